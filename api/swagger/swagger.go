package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "BrightClass Results API",
        "description": "Result computation and publication engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Scores", "description": "Score entry and completeness"},
        {"name": "Results", "description": "Publication and published result reads"},
        {"name": "Rankings", "description": "Competition-ranked class positions"},
        {"name": "Rollover", "description": "Term rollover and promotions"},
        {"name": "Configuration", "description": "Grade thresholds, assessment and subject config"},
        {"name": "Assignments", "description": "Teacher-class assignments"},
        {"name": "Exports", "description": "Result sheet downloads"},
        {"name": "Observability", "description": "Metrics and health"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/scores": {
            "put": {
                "tags": ["Scores"],
                "summary": "Save a student's scores for a term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveScoresRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Results locked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scores/classes/{classname}/completeness": {
            "get": {
                "tags": ["Scores"],
                "summary": "Completeness report for a class",
                "parameters": [
                    {"name": "classname", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/publish": {
            "post": {
                "tags": ["Results"],
                "summary": "Publish a class's results for a term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PublishRequest"}}
                ],
                "responses": {
                    "200": {"description": "Published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Incomplete scores", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Grade thresholds unconfigured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/unpublish": {
            "post": {
                "tags": ["Results"],
                "summary": "Reopen a published class for corrections",
                "parameters": [
                    {"name": "classname", "in": "query", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/students/{studentId}": {
            "get": {
                "tags": ["Results"],
                "summary": "Published result snapshot for a student",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "type": "string", "description": "Term token, e.g. First Term (2025/2026). Latest when omitted."}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/students/{studentId}/terms": {
            "get": {
                "tags": ["Results"],
                "summary": "Terms with published results for a student",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/classes/{classname}": {
            "get": {
                "tags": ["Results"],
                "summary": "Published snapshots for a class",
                "parameters": [
                    {"name": "classname", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/status": {
            "get": {
                "tags": ["Results"],
                "summary": "Per-class publication status for a term",
                "parameters": [
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rankings/classes/{classname}": {
            "get": {
                "tags": ["Rankings"],
                "summary": "Ranked positions for a class",
                "parameters": [
                    {"name": "classname", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"},
                    {"name": "published", "in": "query", "type": "boolean", "description": "Rank over frozen snapshots instead of working scores"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rankings/students/{studentId}": {
            "get": {
                "tags": ["Rankings"],
                "summary": "Class and subject standing for one student",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "classname", "in": "query", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rollover": {
            "post": {
                "tags": ["Rollover"],
                "summary": "Roll the school forward to a new term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RolloverRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rollover/promotions": {
            "post": {
                "tags": ["Rollover"],
                "summary": "Apply end-of-session promotion decisions",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/PromotionDecision"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/school": {
            "get": {
                "tags": ["Configuration"],
                "summary": "Tenant settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/thresholds": {
            "put": {
                "tags": ["Configuration"],
                "summary": "Save grade thresholds",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeThresholdsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/assessment/{level}": {
            "get": {
                "tags": ["Configuration"],
                "summary": "Assessment config for a level",
                "parameters": [
                    {"name": "level", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/assessment": {
            "put": {
                "tags": ["Configuration"],
                "summary": "Save assessment config",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssessmentConfigRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/subjects/{classname}": {
            "get": {
                "tags": ["Configuration"],
                "summary": "Subject config for a class",
                "parameters": [
                    {"name": "classname", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Configuration"],
                "summary": "Delete subject config for a class",
                "parameters": [
                    {"name": "classname", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/config/subjects": {
            "put": {
                "tags": ["Configuration"],
                "summary": "Save subject config for a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubjectConfigRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/subjects/{classname}/sync": {
            "post": {
                "tags": ["Configuration"],
                "summary": "Rebuild student subject lists from the class config",
                "parameters": [
                    {"name": "classname", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments for a term",
                "parameters": [
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign a teacher to a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{classname}": {
            "delete": {
                "tags": ["Assignments"],
                "summary": "Remove a class assignment",
                "parameters": [
                    {"name": "classname", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Removed"}
                }
            }
        },
        "/exports/classes/{classname}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the published result sheet",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "classname", "in": "path", "required": true, "type": "string"},
                    {"name": "term", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "404": {"description": "Not published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/snapshot": {
            "get": {
                "tags": ["Observability"],
                "summary": "Aggregated runtime metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubjectScoreInput": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "tests": {"type": "array", "items": {"type": "number"}},
                "exam_score": {"type": "number"},
                "objective": {"type": "number"},
                "theory": {"type": "number"}
            },
            "required": ["subject"]
        },
        "SaveScoresRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "term": {"type": "string"},
                "academic_year": {"type": "string"},
                "teacher_comment": {"type": "string"},
                "scores": {"type": "array", "items": {"$ref": "#/definitions/SubjectScoreInput"}}
            },
            "required": ["student_id", "term", "scores"]
        },
        "PublishRequest": {
            "type": "object",
            "properties": {
                "classname": {"type": "string"},
                "term": {"type": "string"},
                "academic_year": {"type": "string"}
            },
            "required": ["classname", "term"]
        },
        "RolloverRequest": {
            "type": "object",
            "properties": {
                "to_term": {"type": "string"},
                "to_year": {"type": "string"}
            },
            "required": ["to_term"]
        },
        "PromotionDecision": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "action": {"type": "string", "enum": ["promote", "repeat", "remove"]},
                "target_class": {"type": "string"},
                "stream": {"type": "string"},
                "optional_picks": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["student_id", "action"]
        },
        "GradeThresholdsRequest": {
            "type": "object",
            "properties": {
                "a": {"type": "integer"},
                "b": {"type": "integer"},
                "c": {"type": "integer"},
                "d": {"type": "integer"},
                "pass_mark": {"type": "integer"}
            },
            "required": ["a", "b", "c", "d", "pass_mark"]
        },
        "AssessmentConfigRequest": {
            "type": "object",
            "properties": {
                "level": {"type": "string", "enum": ["primary", "jss", "ss"]},
                "exam_mode": {"type": "string", "enum": ["combined", "separate"]},
                "exam_score_max": {"type": "integer"},
                "objective_max": {"type": "integer"},
                "theory_max": {"type": "integer"}
            },
            "required": ["level", "exam_mode"]
        },
        "SubjectConfigRequest": {
            "type": "object",
            "properties": {
                "classname": {"type": "string"},
                "core_subjects": {"type": "array", "items": {"type": "string"}},
                "science_subjects": {"type": "array", "items": {"type": "string"}},
                "art_subjects": {"type": "array", "items": {"type": "string"}},
                "commercial_subjects": {"type": "array", "items": {"type": "string"}},
                "optional_subjects": {"type": "array", "items": {"type": "string"}},
                "optional_subject_limit": {"type": "integer"}
            },
            "required": ["classname"]
        },
        "AssignClassRequest": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string"},
                "teacher_name": {"type": "string"},
                "classname": {"type": "string"},
                "term": {"type": "string"},
                "academic_year": {"type": "string"}
            },
            "required": ["teacher_id", "classname", "term"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
