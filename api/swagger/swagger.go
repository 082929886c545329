package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Planner API",
        "description": "Exam timetabling for departments: slot scheduling, conflict audits, room assignment and seat plans.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "ExamPlanning", "description": "Department scoped scheduling, audits and room assignment"},
        {"name": "Exams", "description": "Single exam edits and seat plans"},
        {"name": "System", "description": "Operational counters"}
    ],
    "paths": {
        "/departments/{departmentId}/exams/schedule": {
            "post": {
                "tags": ["ExamPlanning"],
                "summary": "Generate the exam schedule of a department",
                "description": "Replaces every exam of the department. Courses that cannot be placed conflict-free are forced into the last slot and reported.",
                "parameters": [
                    {"name": "departmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/GenerateExamScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid window or options", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Department not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No course left to schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/{departmentId}/exams": {
            "get": {
                "tags": ["ExamPlanning"],
                "summary": "List department exams",
                "parameters": [
                    {"name": "departmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["ExamPlanning"],
                "summary": "Delete every exam of a department",
                "parameters": [
                    {"name": "departmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/{departmentId}/exams/status": {
            "get": {
                "tags": ["ExamPlanning"],
                "summary": "Planning data counts for a department",
                "parameters": [
                    {"name": "departmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/{departmentId}/exams/slots": {
            "get": {
                "tags": ["ExamPlanning"],
                "summary": "Preview the candidate slot pool",
                "parameters": [
                    {"name": "departmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "dateStart", "in": "query", "type": "string", "format": "date"},
                    {"name": "dateEnd", "in": "query", "type": "string", "format": "date"},
                    {"name": "excludedWeekdays", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/{departmentId}/exams/conflicts": {
            "get": {
                "tags": ["ExamPlanning"],
                "summary": "Audit student and room conflicts",
                "description": "Reports are cached for AUDIT_CACHE_TTL. Writes made through this API invalidate the cache, but changes written directly by other systems only show up after the TTL expires. Pass fresh=true to recompute from the current state.",
                "parameters": [
                    {"name": "departmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "fresh", "in": "query", "type": "boolean", "description": "Recompute instead of serving a cached report"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/{departmentId}/exams/rooms": {
            "post": {
                "tags": ["ExamPlanning"],
                "summary": "Assign rooms to exams without one",
                "parameters": [
                    {"name": "departmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}": {
            "put": {
                "tags": ["Exams"],
                "summary": "Manually edit an exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateExamRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid start or room", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Exam not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}/seating": {
            "get": {
                "tags": ["Exams"],
                "summary": "Seat plan of an exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Exam has no room", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Aggregated planner and HTTP counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateExamScheduleRequest": {
            "type": "object",
            "properties": {
                "dateStart": {"type": "string", "format": "date"},
                "dateEnd": {"type": "string", "format": "date"},
                "excludedWeekdays": {"type": "array", "items": {"type": "string"}},
                "excludedCourseIds": {"type": "array", "items": {"type": "string"}},
                "cooldownMinutes": {"type": "integer", "minimum": 0, "maximum": 1440},
                "singleExamAtATime": {"type": "boolean"},
                "examType": {"type": "string", "enum": ["MIDTERM", "FINAL", "MAKEUP"]},
                "durationMinutes": {"type": "integer", "minimum": 1, "maximum": 600}
            }
        },
        "UpdateExamRequest": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "2024-03-04 09:00"},
                "roomId": {"type": "string"},
                "clearRoom": {"type": "boolean"},
                "durationMinutes": {"type": "integer"},
                "examType": {"type": "string", "enum": ["MIDTERM", "FINAL", "MAKEUP"]}
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
