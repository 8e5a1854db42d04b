// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "User registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.registerResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "description": "username may hold either the username or the email address.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            }
        },
        "/api/experiments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["experiments"],
                "summary": "List own experiments",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Experiment"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["experiments"],
                "summary": "Create experiment",
                "parameters": [
                    {"description": "Experiment", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createExperimentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Experiment"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            }
        },
        "/api/experiments/available": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["experiments"],
                "summary": "List available experiments",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.PublicExperiment"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            }
        },
        "/api/experiments/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["experiments"],
                "summary": "Get experiment",
                "parameters": [{"type": "string", "description": "Experiment ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PublicExperiment"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Changing storyTheme or the target word texts clears generated content.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["experiments"],
                "summary": "Update experiment",
                "parameters": [
                    {"type": "string", "description": "Experiment ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateExperimentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Experiment"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["experiments"],
                "summary": "Delete experiment",
                "parameters": [{"type": "string", "description": "Experiment ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            }
        },
        "/api/experiments/{id}/generate-content": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["experiments"],
                "summary": "Generate story and audio",
                "parameters": [{"type": "string", "description": "Experiment ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.generateContentResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            }
        },
        "/api/experiments/{id}/sessions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Start session",
                "parameters": [
                    {"type": "string", "description": "Experiment ID", "name": "id", "in": "path", "required": true},
                    {"description": "Condition: treatment or control", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.startSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.startSessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            }
        },
        "/api/sessions/{sessionId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Get session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "sessionId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.StudySession"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            }
        },
        "/api/sessions/{sessionId}/advance": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Leaving the consent stage requires consent=true.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Advance session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "path", "required": true},
                    {"description": "Consent", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handler.advanceSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.StudySession"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.livenessResponse"}}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.TargetWord": {
            "type": "object",
            "properties": {"word": {"type": "string"}, "definition": {"type": "string"}}
        },
        "domain.Experiment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "ownerId": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "storyTheme": {"type": "string"},
                "targetWords": {"type": "array", "items": {"$ref": "#/definitions/domain.TargetWord"}},
                "generatedStory": {"type": "string"},
                "audioUrl": {"type": "string"},
                "isActive": {"type": "boolean"},
                "version": {"type": "integer"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "domain.PublicExperiment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "generatedStory": {"type": "string"},
                "targetWords": {"type": "array", "items": {"$ref": "#/definitions/domain.TargetWord"}},
                "audioUrl": {"type": "string"}
            }
        },
        "domain.StudySession": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "experimentId": {"type": "string"},
                "participantId": {"type": "string"},
                "condition": {"type": "string", "enum": ["treatment", "control"]},
                "stage": {"type": "string", "enum": ["consent", "priorKnowledge", "gapFill", "transcription", "complete"]},
                "consentedAt": {"type": "string"},
                "startedAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["teacher", "participant"]},
                "createdAt": {"type": "string"}
            }
        },
        "handler.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handler.registerRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["teacher", "participant"]}
            }
        },
        "handler.registerResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "user": {"$ref": "#/definitions/domain.User"}}
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/domain.User"}}
        },
        "handler.targetWordRequest": {
            "type": "object",
            "required": ["definition", "word"],
            "properties": {"word": {"type": "string"}, "definition": {"type": "string"}}
        },
        "handler.createExperimentRequest": {
            "type": "object",
            "required": ["storyTheme", "title"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "storyTheme": {"type": "string"},
                "targetWords": {"type": "array", "items": {"$ref": "#/definitions/handler.targetWordRequest"}}
            }
        },
        "handler.updateExperimentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "storyTheme": {"type": "string"},
                "targetWords": {"type": "array", "items": {"$ref": "#/definitions/handler.targetWordRequest"}},
                "isActive": {"type": "boolean"}
            }
        },
        "handler.generateContentResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "experiment": {"$ref": "#/definitions/domain.Experiment"}}
        },
        "handler.startSessionRequest": {
            "type": "object",
            "properties": {"condition": {"type": "string", "enum": ["treatment", "control"]}}
        },
        "handler.startSessionResponse": {
            "type": "object",
            "properties": {"session": {"$ref": "#/definitions/domain.StudySession"}, "experiment": {"$ref": "#/definitions/domain.PublicExperiment"}}
        },
        "handler.advanceSessionRequest": {
            "type": "object",
            "properties": {"consent": {"type": "boolean"}}
        },
        "handler.livenessResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "message": {"type": "string"}}
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "error": {"type": "string"}}
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Study API",
	Description:      "Vocabulary-learning experiments: authoring, story and narration generation, participant sessions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
