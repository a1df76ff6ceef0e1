package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-admin-api/internal/models"
	"github.com/noah-isme/teacher-admin-api/internal/repository"
)

type relationKey struct {
	teacherID int64
	studentID int64
}

var errWriteOutsideTx = errors.New("student and relationship writes require a transaction")

// memStore is an in-memory stand-in for the teacher, student and relationship repositories.
// Student and relationship writes must arrive through a *sqlx.Tx; they stay undoable until the
// driver reports how that transaction ended (see newTxProviderMock).
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	teachers map[string]*models.Teacher
	students map[string]*models.Student
	rels     map[relationKey]*models.TeacherStudentRelationship
	undo     []func()

	failStudentEmail string
	deactivateErr    error
	rosterErr        error
	rosterCalls      int
	pairCalls        int
}

func newMemStore() *memStore {
	return &memStore{
		teachers: make(map[string]*models.Teacher),
		students: make(map[string]*models.Student),
		rels:     make(map[relationKey]*models.TeacherStudentRelationship),
	}
}

func (m *memStore) addTeacher(email string, status models.TeacherStatus) *models.Teacher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	teacher := &models.Teacher{ID: m.nextID, Email: email, Status: status, CreatedAt: time.Now()}
	m.teachers[email] = teacher
	return teacher
}

// stage records how to revert a write made through exec. Callers hold m.mu.
func (m *memStore) stage(exec sqlx.ExtContext, revert func()) error {
	if _, ok := exec.(*sqlx.Tx); !ok {
		return errWriteOutsideTx
	}
	m.undo = append(m.undo, revert)
	return nil
}

// settle keeps or reverts every staged write once the transaction has ended.
func (m *memStore) settle(committed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !committed {
		for i := len(m.undo) - 1; i >= 0; i-- {
			m.undo[i]()
		}
	}
	m.undo = nil
}

func (m *memStore) teacherByID(id int64) *models.Teacher {
	for _, teacher := range m.teachers {
		if teacher.ID == id {
			return teacher
		}
	}
	return nil
}

func (m *memStore) studentByID(id int64) *models.Student {
	for _, student := range m.students {
		if student.ID == id {
			return student
		}
	}
	return nil
}

func (m *memStore) relationship(teacherID int64, studentEmail string) *models.TeacherStudentRelationship {
	m.mu.Lock()
	defer m.mu.Unlock()
	student, ok := m.students[studentEmail]
	if !ok {
		return nil
	}
	return m.rels[relationKey{teacherID, student.ID}]
}

func (m *memStore) Create(ctx context.Context, exec sqlx.ExtContext, email string, now time.Time) (*models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teachers[email]; ok {
		return nil, fmt.Errorf("create teacher %s: %w", email, repository.ErrDuplicate)
	}
	m.nextID++
	teacher := &models.Teacher{ID: m.nextID, Email: email, Status: models.TeacherStatusActive, CreatedAt: now}
	m.teachers[email] = teacher
	cp := *teacher
	return &cp, nil
}

func (m *memStore) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if teacher := m.teacherByID(id); teacher != nil {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) FindOrCreate(ctx context.Context, exec sqlx.ExtContext, email string, now time.Time) (*models.Student, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if email == m.failStudentEmail {
		return nil, false, fmt.Errorf("insert student: connection reset")
	}
	if student, ok := m.students[email]; ok {
		cp := *student
		return &cp, false, nil
	}
	if err := m.stage(exec, func() { delete(m.students, email) }); err != nil {
		return nil, false, err
	}
	m.nextID++
	student := &models.Student{ID: m.nextID, Email: email, Status: models.StudentStatusActive, CreatedAt: now}
	m.students[email] = student
	cp := *student
	return &cp, true, nil
}

func (m *memStore) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string, forUpdate bool) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if student, ok := m.students[email]; ok {
		cp := *student
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) FindByEmails(ctx context.Context, emails []string, status *models.StudentStatus) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Student
	for _, email := range emails {
		student, ok := m.students[email]
		if !ok || (status != nil && student.Status != *status) {
			continue
		}
		out = append(out, *student)
	}
	return out, nil
}

func (m *memStore) SetSuspended(ctx context.Context, exec sqlx.ExtContext, id int64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	student := m.studentByID(id)
	if student == nil || student.Suspended() {
		return fmt.Errorf("suspend student %d: %w", id, repository.ErrInvalidTransition)
	}
	prev := *student
	if err := m.stage(exec, func() { *student = prev }); err != nil {
		return err
	}
	student.Status = models.StudentStatusSuspended
	student.SuspendedAt = &now
	student.UpdatedAt = &now
	return nil
}

func (m *memStore) UpsertActive(ctx context.Context, exec sqlx.ExtContext, teacherID, studentID int64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.teacherByID(teacherID) == nil {
		return fmt.Errorf("upsert relationship: %w", repository.ErrForeignKey)
	}
	key := relationKey{teacherID, studentID}
	if rel, ok := m.rels[key]; ok {
		prev := *rel
		if err := m.stage(exec, func() { *rel = prev }); err != nil {
			return err
		}
		rel.Status = models.RelationshipStatusActive
		rel.UpdatedAt = &now
		return nil
	}
	if err := m.stage(exec, func() { delete(m.rels, key) }); err != nil {
		return err
	}
	m.nextID++
	m.rels[key] = &models.TeacherStudentRelationship{ID: m.nextID, TeacherID: teacherID, StudentID: studentID, Status: models.RelationshipStatusActive, CreatedAt: now}
	return nil
}

func (m *memStore) DeactivateAllForStudent(ctx context.Context, exec sqlx.ExtContext, studentID int64, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deactivateErr != nil {
		return 0, m.deactivateErr
	}
	var affected int64
	for key, rel := range m.rels {
		if key.studentID == studentID {
			rel, prev := rel, *rel
			if err := m.stage(exec, func() { *rel = prev }); err != nil {
				return affected, err
			}
			rel.Status = models.RelationshipStatusInactive
			rel.UpdatedAt = &now
			affected++
		}
	}
	return affected, nil
}

func (m *memStore) FindStudentEmailsForTeachers(ctx context.Context, teacherEmails []string, activeOnly bool) ([]models.TeacherStudentEmail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairCalls++
	var out []models.TeacherStudentEmail
	for _, email := range teacherEmails {
		teacher, ok := m.teachers[email]
		if !ok || !teacher.Active() {
			continue
		}
		for key, rel := range m.rels {
			if key.teacherID != teacher.ID {
				continue
			}
			if activeOnly && rel.Status != models.RelationshipStatusActive {
				continue
			}
			out = append(out, models.TeacherStudentEmail{TeacherEmail: email, StudentEmail: m.studentByID(key.studentID).Email})
		}
	}
	return out, nil
}

func (m *memStore) FindActiveRelationshipStudentEmails(ctx context.Context, teacherID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosterCalls++
	if m.rosterErr != nil {
		return nil, m.rosterErr
	}
	var out []string
	for key, rel := range m.rels {
		if key.teacherID != teacherID || rel.Status != models.RelationshipStatusActive {
			continue
		}
		if student := m.studentByID(key.studentID); student.Status == models.StudentStatusActive {
			out = append(out, student.Email)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) ListRoster(ctx context.Context, teacherID int64) ([]models.RosterEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RosterEntry
	for key, rel := range m.rels {
		if key.teacherID != teacherID {
			continue
		}
		student := m.studentByID(key.studentID)
		out = append(out, models.RosterEntry{
			StudentEmail:       student.Email,
			StudentStatus:      student.Status,
			RelationshipStatus: rel.Status,
			RegisteredAt:       rel.CreatedAt,
			UpdatedAt:          rel.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentEmail < out[j].StudentEmail })
	return out, nil
}

// teacherRepoView exposes the teacher lookups of memStore under the repository method names.
type teacherRepoView struct{ *memStore }

func (v teacherRepoView) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if teacher, ok := v.teachers[email]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

var txMockSeq int64

// newTxProviderMock returns a sqlmock-backed pool whose transactions report their outcome to
// store, so writes staged under a rolled back transaction disappear as they would in Postgres.
func newTxProviderMock(t *testing.T, store *memStore) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	dsn := fmt.Sprintf("roster_tx_%d", atomic.AddInt64(&txMockSeq, 1))
	base, mock, err := sqlmock.NewWithDSN(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { base.Close() })

	db := sql.OpenDB(settlingConnector{dsn: dsn, drv: base.Driver(), store: store})
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

type settlingConnector struct {
	dsn   string
	drv   driver.Driver
	store *memStore
}

func (c settlingConnector) Connect(context.Context) (driver.Conn, error) {
	conn, err := c.drv.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return settlingConn{Conn: conn, store: c.store}, nil
}

func (c settlingConnector) Driver() driver.Driver { return c.drv }

type settlingConn struct {
	driver.Conn
	store *memStore
}

func (c settlingConn) Begin() (driver.Tx, error) {
	tx, err := c.Conn.Begin() //nolint:staticcheck
	if err != nil {
		return nil, err
	}
	return settlingTx{Tx: tx, store: c.store}, nil
}

type settlingTx struct {
	driver.Tx
	store *memStore
}

func (t settlingTx) Commit() error {
	err := t.Tx.Commit()
	t.store.settle(err == nil)
	return err
}

func (t settlingTx) Rollback() error {
	err := t.Tx.Rollback()
	t.store.settle(false)
	return err
}
