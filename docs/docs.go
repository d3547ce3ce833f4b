// Package docs holds the Swagger document served under /swagger.
// Regenerate with: swag init -g main.go
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
        "/api/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LoginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}}
                }
            }
        },
        "/api/quotations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "List quotations",
                "parameters": [
                    {"type": "boolean", "description": "List the archive instead", "name": "archived", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Quotation"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "Save a quotation",
                "parameters": [
                    {"description": "Customer, products and terms", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.DraftRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.QuotationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/api/quotations/draft": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "Assemble a draft",
                "parameters": [
                    {"description": "Customer, products and terms", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.DraftRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Quotation"}}
                }
            }
        },
        "/api/quotations/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "Get quotation",
                "parameters": [
                    {"type": "string", "description": "Quotation ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.QuotationResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "Delete quotation",
                "parameters": [
                    {"type": "string", "description": "Quotation ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MessageResponse"}}
                }
            }
        },
        "/api/quotations/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Quotations"],
                "summary": "Change status",
                "parameters": [
                    {"type": "string", "description": "Quotation ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.StatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MessageResponse"}}
                }
            }
        },
        "/api/quotations/{id}/pdf": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "tags": ["Quotations"],
                "summary": "Quotation PDF",
                "parameters": [
                    {"type": "string", "description": "Quotation ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "PDF document", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "invalid credentials"}}
        },
        "models.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string", "example": "Quotation archived"}}
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "somchai@example.com"},
                "password": {"type": "string", "example": "secret123"}
            }
        },
        "models.LoginResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_at": {"type": "string"},
                "is_admin": {"type": "boolean"},
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/models.User"}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "telephone": {"type": "string"},
                "role": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.Customer": {
            "type": "object",
            "properties": {
                "customerCode": {"type": "string"},
                "companyName": {"type": "string"},
                "searchName": {"type": "string"},
                "isLead": {"type": "boolean"}
            }
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "itemCode": {"type": "string"},
                "description": {"type": "string"},
                "unitPrice": {"type": "number"},
                "modifiedPrice": {"type": "number"}
            }
        },
        "models.DraftRequest": {
            "type": "object",
            "required": ["customer", "paymentTerms", "validityPeriod"],
            "properties": {
                "customer": {"$ref": "#/definitions/models.Customer"},
                "products": {"type": "array", "items": {"$ref": "#/definitions/models.Product"}},
                "paymentTerms": {"type": "string", "example": "cod"},
                "validityPeriod": {"type": "string", "example": "1-week"},
                "senderUserId": {"type": "string"}
            }
        },
        "models.QuotationItem": {
            "type": "object",
            "properties": {
                "itemCode": {"type": "string"},
                "description": {"type": "string"},
                "listPrice": {"type": "number"},
                "quotePrice": {"type": "number"},
                "discount": {"type": "number"}
            }
        },
        "models.QuotationSender": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "models.Quotation": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "customer": {"$ref": "#/definitions/models.Customer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.QuotationItem"}},
                "createdAt": {"type": "string"},
                "status": {"type": "string", "example": "draft"},
                "paymentTerms": {"type": "string", "example": "cod"},
                "validityPeriod": {"type": "string", "example": "1-week"},
                "validUntil": {"type": "string"},
                "sender": {"$ref": "#/definitions/models.QuotationSender"}
            }
        },
        "models.QuotationResponse": {
            "type": "object",
            "properties": {
                "quotation": {"$ref": "#/definitions/models.Quotation"},
                "archived": {"type": "boolean"}
            }
        },
        "models.StatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "example": "sent"}}
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
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Quotedesk API",
	Description:      "Sales quotations: login, drafting, lifecycle, PDF and XLSX export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
