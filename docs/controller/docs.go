// Package controller registers the controller's OpenAPI document with swag.
package controller

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/env": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["env"],
                "summary": "Get environment",
                "parameters": [
                    {"type": "string", "description": "ETag from a previous response", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "Current environment", "schema": {"$ref": "#/definitions/dto.EnvResponse"}},
                    "304": {"description": "Environment unchanged"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/wrapper.JSONResult"}}
                }
            }
        },
        "/env/meta": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["env"],
                "summary": "Get environment metadata",
                "responses": {
                    "200": {"description": "Environment with metadata", "schema": {"$ref": "#/definitions/dto.EnvMetaResponse"}}
                }
            }
        },
        "/env/actions": {
            "post": {
                "security": [{"BasicAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["env"],
                "summary": "Dispatch an action",
                "parameters": [
                    {"description": "Action", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.DispatchActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Dispatch outcome", "schema": {"$ref": "#/definitions/wrapper.JSONResult"}},
                    "400": {"description": "Invalid action", "schema": {"$ref": "#/definitions/wrapper.JSONResult"}}
                }
            }
        },
        "/env/telegraf-interval": {
            "put": {
                "security": [{"BasicAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["env"],
                "summary": "Set telegraf system interval",
                "parameters": [
                    {"description": "Interval", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SetTelegrafIntervalRequest"}}
                ],
                "responses": {
                    "200": {"description": "Dispatch outcome", "schema": {"$ref": "#/definitions/wrapper.JSONResult"}}
                }
            }
        },
        "/env/host-page": {
            "put": {
                "security": [{"BasicAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["env"],
                "summary": "Set host page display status",
                "parameters": [
                    {"description": "Host page status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SetHostPageDisplayRequest"}}
                ],
                "responses": {
                    "200": {"description": "Dispatch outcome", "schema": {"$ref": "#/definitions/wrapper.JSONResult"}}
                }
            }
        },
        "/env/history": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["env"],
                "summary": "Environment history",
                "parameters": [
                    {"type": "integer", "description": "Maximum snapshots to return", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Snapshots", "schema": {"$ref": "#/definitions/wrapper.JSONResult"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "dto.EnvResponse": {
            "type": "object",
            "properties": {
                "hostPageDisabled": {"type": "boolean", "example": false},
                "telegrafSystemInterval": {"type": "string", "example": "1m"}
            }
        },
        "dto.EnvMetaResponse": {
            "type": "object",
            "properties": {
                "env": {"$ref": "#/definitions/dto.EnvResponse"},
                "etag": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "dto.DispatchActionRequest": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "payload": {"type": "object"},
                "type": {"type": "string", "example": "SET_TELEGRAF_SYSTEM_INTERVAL"}
            }
        },
        "dto.SetTelegrafIntervalRequest": {
            "type": "object",
            "required": ["telegrafSystemInterval"],
            "properties": {
                "telegrafSystemInterval": {"type": "string", "example": "5m"}
            }
        },
        "dto.SetHostPageDisplayRequest": {
            "type": "object",
            "required": ["hostPageDisabled"],
            "properties": {
                "hostPageDisabled": {"type": "boolean", "example": true}
            }
        },
        "wrapper.JSONResult": {
            "type": "object",
            "properties": {
                "data": {},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BasicAuth": {"type": "basic"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Environment State Service - Controller API",
	Description:      "Controller service holding the environment settings snapshot and applying actions to it.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
