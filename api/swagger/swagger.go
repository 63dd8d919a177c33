package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Relief Verification API",
        "description": "Verification queue, auto-approval and donor achievements for disaster response data",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Submissions",
            "description": "Assessment and response intake"
        },
        {
            "name": "Verification",
            "description": "Coordinator verification queue"
        },
        {
            "name": "Auto Approval",
            "description": "Auto-approval rules and guards"
        },
        {
            "name": "Feedback",
            "description": "Coordinator feedback to submitters"
        },
        {
            "name": "Achievements",
            "description": "Donor achievements"
        },
        {
            "name": "Dashboard",
            "description": "Role dashboards"
        },
        {
            "name": "Auth",
            "description": "Caller identity"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Not ready"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": [
                    "Auth"
                ],
                "summary": "Current user profile",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/assessments": {
            "post": {
                "tags": [
                    "Submissions"
                ],
                "summary": "Submit a rapid assessment",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SubmitAssessmentRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/responses": {
            "post": {
                "tags": [
                    "Submissions"
                ],
                "summary": "Submit a response delivery",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SubmitResponseRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/queue": {
            "get": {
                "tags": [
                    "Verification"
                ],
                "summary": "List the verification queue",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "subtype", "in": "query", "type": "string"},
                    {"name": "submitterId", "in": "query", "type": "string"},
                    {"name": "donorId", "in": "query", "type": "string"},
                    {"name": "submittedFrom", "in": "query", "type": "string"},
                    {"name": "submittedTo", "in": "query", "type": "string"},
                    {"name": "minCompleteness", "in": "query", "type": "number"},
                    {"name": "sortBy", "in": "query", "type": "string"},
                    {"name": "sortOrder", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/overrides": {
            "get": {
                "tags": [
                    "Verification"
                ],
                "summary": "List override audit records",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "targetId", "in": "query", "type": "string"},
                    {"name": "coordinatorId", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/overrides/export": {
            "get": {
                "tags": [
                    "Verification"
                ],
                "summary": "Export override audit records",
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File"
                    }
                }
            }
        },
        "/api/v1/verification/assessments/batch-progress": {
            "get": {
                "tags": [
                    "Verification"
                ],
                "summary": "Progress of the running assessment batch",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/assessments/batch-approve": {
            "post": {
                "tags": [
                    "Verification"
                ],
                "summary": "Approve assessments in batch",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BatchApproveRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Batch already running",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/assessments/batch-reject": {
            "post": {
                "tags": [
                    "Verification"
                ],
                "summary": "Reject assessments in batch",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BatchRejectRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Batch already running",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/assessments/override": {
            "post": {
                "tags": [
                    "Verification"
                ],
                "summary": "Override auto-verified assessments",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/OverrideRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Invalid transition",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/assessments/{id}": {
            "get": {
                "tags": [
                    "Verification"
                ],
                "summary": "Get a assessment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/assessments/{id}/approve": {
            "post": {
                "tags": [
                    "Verification"
                ],
                "summary": "Approve a assessment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/ApproveRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Invalid transition",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/assessments/{id}/reject": {
            "post": {
                "tags": [
                    "Verification"
                ],
                "summary": "Reject a assessment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RejectRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Comments required",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Invalid transition",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/responses/batch-progress": {
            "get": {
                "tags": [
                    "Verification"
                ],
                "summary": "Progress of the running response batch",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/responses/batch-approve": {
            "post": {
                "tags": [
                    "Verification"
                ],
                "summary": "Approve responses in batch",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BatchApproveRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Batch already running",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/responses/batch-reject": {
            "post": {
                "tags": [
                    "Verification"
                ],
                "summary": "Reject responses in batch",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BatchRejectRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Batch already running",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/responses/override": {
            "post": {
                "tags": [
                    "Verification"
                ],
                "summary": "Override auto-verified responses",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/OverrideRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Invalid transition",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/responses/{id}": {
            "get": {
                "tags": [
                    "Verification"
                ],
                "summary": "Get a response",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/responses/{id}/approve": {
            "post": {
                "tags": [
                    "Verification"
                ],
                "summary": "Approve a response",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/ApproveRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Invalid transition",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/verification/responses/{id}/reject": {
            "post": {
                "tags": [
                    "Verification"
                ],
                "summary": "Reject a response",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RejectRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Comments required",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Invalid transition",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/auto-approval/config": {
            "get": {
                "tags": [
                    "Auto Approval"
                ],
                "summary": "Current auto-approval configuration",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Auto Approval"
                ],
                "summary": "Replace auto-approval configuration",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AutoApprovalConfig"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/auto-approval/toggle": {
            "post": {
                "tags": [
                    "Auto Approval"
                ],
                "summary": "Enable or disable auto-approval",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ToggleAutoApprovalRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/auto-approval/preview": {
            "post": {
                "tags": [
                    "Auto Approval"
                ],
                "summary": "Dry-run an item against the rules",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PreviewRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/feedback": {
            "get": {
                "tags": [
                    "Feedback"
                ],
                "summary": "Feedback inbox",
                "parameters": [
                    {"name": "unreadOnly", "in": "query", "type": "boolean"},
                    {"name": "unresolvedOnly", "in": "query", "type": "boolean"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/feedback/target/{type}/{id}": {
            "get": {
                "tags": [
                    "Feedback"
                ],
                "summary": "Feedback for a submission",
                "parameters": [
                    {
                        "name": "type",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/feedback/{id}/read": {
            "post": {
                "tags": [
                    "Feedback"
                ],
                "summary": "Mark feedback read",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/feedback/{id}/resolve": {
            "post": {
                "tags": [
                    "Feedback"
                ],
                "summary": "Mark feedback resolved",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/donors/{id}/achievements": {
            "get": {
                "tags": [
                    "Achievements"
                ],
                "summary": "Donor achievements",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/donors/{id}/stats": {
            "get": {
                "tags": [
                    "Achievements"
                ],
                "summary": "Donor delivery statistics",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/dashboard": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Role dashboard",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "SubmitAssessmentRequest": {
            "type": "object",
            "properties": {
                "assessmentType": {
                    "type": "string"
                },
                "affectedEntityId": {
                    "type": "string"
                },
                "submittedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "completeness": {
                    "type": "number"
                },
                "gpsAccuracyMeters": {
                    "type": "number"
                },
                "mediaCount": {
                    "type": "integer"
                },
                "data": {
                    "type": "object"
                }
            },
            "required": [
                "assessmentType",
                "affectedEntityId"
            ]
        },
        "SubmitResponseRequest": {
            "type": "object",
            "properties": {
                "responseType": {
                    "type": "string"
                },
                "affectedEntityId": {
                    "type": "string"
                },
                "donorId": {
                    "type": "string"
                },
                "commitmentId": {
                    "type": "string"
                },
                "beneficiariesServed": {
                    "type": "integer"
                },
                "submittedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "completeness": {
                    "type": "number"
                },
                "gpsAccuracyMeters": {
                    "type": "number"
                },
                "mediaCount": {
                    "type": "integer"
                },
                "data": {
                    "type": "object"
                }
            },
            "required": [
                "responseType",
                "affectedEntityId"
            ]
        },
        "ApproveRequest": {
            "type": "object",
            "properties": {
                "coordinatorId": {
                    "type": "string"
                },
                "coordinatorName": {
                    "type": "string"
                },
                "approvalNote": {
                    "type": "string"
                },
                "notifyAssessor": {
                    "type": "boolean"
                },
                "notifyResponder": {
                    "type": "boolean"
                }
            }
        },
        "RejectRequest": {
            "type": "object",
            "properties": {
                "coordinatorId": {
                    "type": "string"
                },
                "coordinatorName": {
                    "type": "string"
                },
                "rejectionReason": {
                    "type": "string"
                },
                "rejectionComments": {
                    "type": "string"
                },
                "priority": {
                    "type": "string"
                },
                "requiresResubmission": {
                    "type": "boolean"
                },
                "notifyAssessor": {
                    "type": "boolean"
                },
                "notifyResponder": {
                    "type": "boolean"
                }
            },
            "required": [
                "rejectionReason"
            ]
        },
        "BatchApproveRequest": {
            "type": "object",
            "properties": {
                "coordinatorId": {
                    "type": "string"
                },
                "coordinatorName": {
                    "type": "string"
                },
                "assessmentIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "responseIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "approvalNote": {
                    "type": "string"
                },
                "notify": {
                    "type": "boolean"
                }
            }
        },
        "BatchRejectRequest": {
            "type": "object",
            "properties": {
                "coordinatorId": {
                    "type": "string"
                },
                "coordinatorName": {
                    "type": "string"
                },
                "assessmentIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "responseIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "rejectionReason": {
                    "type": "string"
                },
                "rejectionComments": {
                    "type": "string"
                },
                "priority": {
                    "type": "string"
                },
                "requiresResubmission": {
                    "type": "boolean"
                },
                "notify": {
                    "type": "boolean"
                }
            },
            "required": [
                "rejectionReason"
            ]
        },
        "OverrideRequest": {
            "type": "object",
            "properties": {
                "coordinatorId": {
                    "type": "string"
                },
                "coordinatorName": {
                    "type": "string"
                },
                "targetIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "newStatus": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                },
                "justification": {
                    "type": "string"
                }
            },
            "required": [
                "targetIds",
                "newStatus",
                "reason"
            ]
        },
        "ToggleAutoApprovalRequest": {
            "type": "object",
            "properties": {
                "enabled": {
                    "type": "boolean"
                }
            },
            "required": [
                "enabled"
            ]
        },
        "PreviewRequest": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "subtype": {
                    "type": "string"
                },
                "submitterId": {
                    "type": "string"
                },
                "completeness": {
                    "type": "number"
                },
                "gpsAccuracyMeters": {
                    "type": "number"
                },
                "mediaCount": {
                    "type": "integer"
                },
                "submittedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "data": {
                    "type": "object"
                }
            },
            "required": [
                "type",
                "subtype"
            ]
        },
        "AutoApprovalConfig": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "rules": {"type": "array", "items": {"type": "object"}},
                "globalSettings": {
                    "type": "object",
                    "properties": {
                        "maxAutoApprovalsPerHour": {"type": "integer"},
                        "requireCoordinatorOnline": {"type": "boolean"},
                        "emergencyOverrideEnabled": {"type": "boolean"},
                        "auditLogRetentionDays": {"type": "integer"}
                    }
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
