// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "User Registration",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "register", "required": true, "schema": {"$ref": "#/definitions/domain.RegisterRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "User Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "login", "required": true, "schema": {"$ref": "#/definitions/domain.LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "429": {"description": "Too Many Requests"}}
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Current User",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/oauth2/authorize/{provider}": {
            "get": {
                "tags": ["oauth2"],
                "summary": "Start OAuth2 Login",
                "parameters": [
                    {"type": "string", "name": "provider", "in": "path", "required": true},
                    {"type": "string", "name": "redirect_uri", "in": "query"}
                ],
                "responses": {"302": {"description": "Found"}, "400": {"description": "Bad Request"}}
            }
        },
        "/oauth2/callback/{provider}": {
            "get": {
                "tags": ["oauth2"],
                "summary": "OAuth2 Callback",
                "parameters": [
                    {"type": "string", "name": "provider", "in": "path", "required": true},
                    {"type": "string", "name": "code", "in": "query", "required": true},
                    {"type": "string", "name": "state", "in": "query", "required": true}
                ],
                "responses": {"302": {"description": "Found"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/applications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["applications"],
                "summary": "List my applications",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["applications"],
                "summary": "Create application",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CreateApplicationRequest"}}],
                "responses": {"200": {"description": "Existing application"}, "201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/applications/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["applications"],
                "summary": "Export applications",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/calendar": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["calendar"],
                "summary": "List calendar events",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/cv/download": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["cv"],
                "summary": "Download CV",
                "produces": ["application/vnd.openxmlformats-officedocument.wordprocessingml.document"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/contact": {
            "post": {
                "tags": ["contact"],
                "summary": "Submit Contact Form",
                "parameters": [{"in": "body", "name": "contact", "required": true, "schema": {"$ref": "#/definitions/domain.ContactRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "429": {"description": "Too Many Requests"}}
            }
        },
        "/admin/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Get admin dashboard statistics",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        }
    },
    "definitions": {
        "domain.RegisterRequest": {
            "type": "object",
            "required": ["email", "fullName", "password"],
            "properties": {
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "domain.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "domain.ContactInput": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "role": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "linkedin": {"type": "string"}
            }
        },
        "domain.CreateApplicationRequest": {
            "type": "object",
            "required": ["companyName", "position"],
            "properties": {
                "companyName": {"type": "string"},
                "position": {"type": "string"},
                "status": {"type": "string", "enum": ["APPLIED", "INTERVIEW", "OFFER", "REJECTED", "GHOSTED"]},
                "jobUrl": {"type": "string"},
                "notes": {"type": "string"},
                "appliedAt": {"type": "string", "format": "date-time"},
                "contacts": {"type": "array", "items": {"$ref": "#/definitions/domain.ContactInput"}}
            }
        },
        "domain.ContactRequest": {
            "type": "object",
            "required": ["email", "message", "name"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "ApplyFollow API",
	Description:      "Job application tracking backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
