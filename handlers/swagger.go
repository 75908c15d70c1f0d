package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the publishing API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>dollpublish API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "dollpublish", "version": "v0.1.0" },
  "components": {
    "securitySchemes": {
      "apiKey": { "type": "apiKey", "in": "header", "name": "api-key" },
      "apiSecret": { "type": "apiKey", "in": "header", "name": "api-secret" }
    },
    "schemas": {
      "Document": {
        "type": "object",
        "required": ["name", "path", "metadata", "content"],
        "properties": {
          "name": { "type": "string" },
          "path": { "type": "string" },
          "metadata": { "type": "object", "properties": { "id": { "type": "string" } }, "additionalProperties": true },
          "content": { "type": "string", "description": "markdown source" },
          "attachments": { "type": "object", "additionalProperties": { "type": "string", "format": "byte" } }
        }
      },
      "Error": { "type": "object", "properties": { "error": { "type": "string" } } }
    }
  },
  "security": [ { "apiKey": [] }, { "apiSecret": [] } ],
  "paths": {
    "/_moon/publish": {
      "post": {
        "summary": "Publish a document, generating an id unless metadata.id is set",
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Document" } } } },
        "responses": { "200": { "description": "metadata including id" }, "400": { "description": "malformed document" }, "401": { "description": "authentication failed" } }
      }
    },
    "/_moon/publish/{id}": {
      "post": {
        "summary": "Replace the document at id",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Document" } } } },
        "responses": { "200": { "description": "metadata with the path id" }, "401": { "description": "authentication failed" } }
      }
    },
    "/_moon/unpublish/{id}": {
      "post": {
        "summary": "Delete a document",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "empty metadata" }, "404": { "description": "not found" } }
      }
    },
    "/_moon/detail/{id}": {
      "get": {
        "summary": "Fetch a stored document with base64 attachments",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "document", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Document" } } } }, "404": { "description": "not found" } }
      }
    },
    "/_files/{filename}": {
      "get": { "summary": "Read template.html or index.html", "responses": { "200": { "description": "file bytes" }, "404": { "description": "not found or not allowed" } } },
      "put": { "summary": "Upload template.html or index.html", "responses": { "200": { "description": "stored" }, "400": { "description": "file name not allowed" } } }
    },
    "/{username}/": { "get": { "summary": "Owner landing page", "security": [], "responses": { "200": { "description": "index.html" }, "404": { "description": "none uploaded" } } } },
    "/{username}/{id}/": { "get": { "summary": "Rendered document", "security": [], "responses": { "200": { "description": "HTML page" }, "404": { "description": "not found" } } } },
    "/{username}/{id}/attachments/{file}": { "get": { "summary": "Raw attachment", "security": [], "responses": { "200": { "description": "file bytes" }, "404": { "description": "not found" } } } },
    "/health": { "get": { "summary": "Liveness check", "security": [], "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "security": [], "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
