package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Teacher Administration API",
        "description": "Teacher-student rosters, suspensions and notification recipients",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Teachers", "description": "Teacher accounts and roster export"},
        {"name": "Students", "description": "Registration, suspension and notification recipients"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check (database ping)",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/api/teachers": {
            "post": {
                "tags": ["Teachers"],
                "summary": "Create teacher",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid teacher email", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Teacher is existed.", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get teacher detail",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Non-numeric id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Teacher does not exist.", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/roster/export": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Export a teacher's roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "teacher", "required": true, "type": "string"},
                    {"in": "query", "name": "format", "required": false, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Roster attachment", "schema": {"type": "file"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Teacher does not exist.", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/register": {
            "post": {
                "tags": ["Students"],
                "summary": "Register students under a teacher",
                "consumes": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RegisterStudentsRequest"}}
                ],
                "responses": {
                    "204": {"description": "Registered"},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Teacher does not exist.", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/commonstudents": {
            "get": {
                "tags": ["Students"],
                "summary": "List students common to all given teachers",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "teacher", "required": true, "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CommonStudentsEnvelope"}},
                    "400": {"description": "Invalid teacher email", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/suspend": {
            "post": {
                "tags": ["Students"],
                "summary": "Suspend a student",
                "consumes": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SuspendStudentRequest"}}
                ],
                "responses": {
                    "204": {"description": "Suspended"},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student does not exist.", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Student was in suspended status.", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/retrievefornotifications": {
            "post": {
                "tags": ["Students"],
                "summary": "Resolve notification recipients",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RetrieveNotificationsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RecipientsEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Teacher does not exist.", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateTeacherRequest": {
            "type": "object",
            "required": ["teacher_email"],
            "properties": {
                "teacher_email": {"type": "string", "format": "email"}
            }
        },
        "RegisterStudentsRequest": {
            "type": "object",
            "required": ["teacher", "students"],
            "properties": {
                "teacher": {"type": "string", "format": "email"},
                "students": {"type": "array", "minItems": 1, "items": {"type": "string", "format": "email"}}
            }
        },
        "SuspendStudentRequest": {
            "type": "object",
            "required": ["student"],
            "properties": {
                "student": {"type": "string", "format": "email"}
            }
        },
        "RetrieveNotificationsRequest": {
            "type": "object",
            "required": ["teacher", "notification"],
            "properties": {
                "teacher": {"type": "string", "format": "email"},
                "notification": {"type": "string"}
            }
        },
        "CommonStudentsEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "students": {"type": "array", "items": {"type": "string"}}
                    }
                }
            }
        },
        "RecipientsEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "recipients": {"type": "array", "items": {"type": "string"}}
                    }
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
