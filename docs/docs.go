// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/invoices": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Upload an invoice",
                "parameters": [
                    {"type": "file", "description": "Invoice PDF", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Acting user", "name": "actor", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/uploadResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/export/{format}": {
            "get": {
                "produces": ["text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["export"],
                "summary": "Export the latest record",
                "parameters": [
                    {"type": "string", "enum": ["csv", "xlsx"], "description": "csv or xlsx", "name": "format", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorPayload"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/records/latest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Latest financial record",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/recordView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List audit entries",
                "parameters": [
                    {"type": "integer", "description": "Maximum entries (default 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/auditEntry"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "Write an audit entry",
                "parameters": [
                    {"description": "Entry", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/logRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "errorPayload": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "code": {"type": "string"},
                "error": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "financialRecord": {
            "type": "object",
            "description": "Sixteen recognized keys in canonical order; each value is a number, a string or null.",
            "additionalProperties": true
        },
        "uploadResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "url": {"type": "string"},
                "key": {"type": "string"},
                "record_key": {"type": "string"},
                "record": {"$ref": "#/definitions/financialRecord"}
            }
        },
        "recordView": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "record": {"$ref": "#/definitions/financialRecord"}
            }
        },
        "auditEntry": {
            "type": "object",
            "properties": {
                "timestamp": {"type": "string", "format": "date-time"},
                "level": {"type": "string", "enum": ["DEFAULT", "INFO", "WARNING", "ERROR"]},
                "message": {"type": "string"},
                "user": {"type": "string"},
                "action": {"type": "string"}
            }
        },
        "logRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "severity": {"type": "string", "enum": ["INFO", "WARNING", "ERROR"]}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Invoice API",
	Description:      "Invoice ingestion, financial record export and audit trail.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
