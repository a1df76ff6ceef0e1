package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"none", "Hello students!", nil},
		{"two mentions", "Hello students! @studentagnes@gmail.com @studentmiche@gmail.com", []string{"studentagnes@gmail.com", "studentmiche@gmail.com"}},
		{"duplicates collapse", "a@x.com, b@x.com and again a@x.com", []string{"a@x.com", "b@x.com"}},
		{"case sensitive", "A@x.com a@x.com", []string{"A@x.com", "a@x.com"}},
		{"short tld rejected", "bad@x.c", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Extract(tc.text))
		})
	}
}
