package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the inventory API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRoutes) {
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
    <title>AI model inventory - Swagger</title>
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
  "info": { "title": "ai-model-inventory", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "Model": {"type":"object","properties":{"_id":{"type":"string"},"name":{"type":"string"},"framework":{"type":"string"},"useCase":{"type":"string"},"dataset":{"type":"string"},"description":{"type":"string"},"image":{"type":"string"},"createdBy":{"type":"string"},"createdAt":{"type":"string","format":"date-time"},"purchased":{"type":"integer"}}},
      "ModelFields": {"type":"object","properties":{"name":{"type":"string"},"framework":{"type":"string"},"useCase":{"type":"string"},"dataset":{"type":"string"},"description":{"type":"string"},"image":{"type":"string"}}},
      "Purchase": {"type":"object","properties":{"_id":{"type":"string"},"modelId":{"type":"string"},"purchasedBy":{"type":"string"},"name":{"type":"string"},"framework":{"type":"string"},"useCase":{"type":"string"},"image":{"type":"string"},"purchasedAt":{"type":"string","format":"date-time"}}},
      "InsertResult": {"type":"object","properties":{"acknowledged":{"type":"boolean"},"insertedId":{"type":"string"}}},
      "UpdateResult": {"type":"object","properties":{"acknowledged":{"type":"boolean"},"matchedCount":{"type":"integer"},"modifiedCount":{"type":"integer"}}},
      "DeleteResult": {"type":"object","properties":{"success":{"type":"boolean"},"modelsDeletedCount":{"type":"integer"},"purchasedDeletedCount":{"type":"integer"},"message":{"type":"string"}}}
    }
  },
  "paths": {
    "/": { "get": { "summary": "Liveness text", "responses": { "200": { "description": "running" } } } },
    "/models": {
      "get": { "summary": "List all models", "responses": { "200": { "description": "models", "content": {"application/json": {"schema": {"type":"array","items":{"$ref":"#/components/schemas/Model"}}}} } } },
      "post": { "summary": "Create a model", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Model"} } } }, "responses": { "200": { "description": "inserted", "content": {"application/json": {"schema": {"$ref":"#/components/schemas/InsertResult"}}} } } }
    },
    "/latest-models": { "get": { "summary": "Six most recent models", "responses": { "200": { "description": "models" } } } },
    "/models/{id}": {
      "get": { "summary": "Get a model (null when absent)", "responses": { "200": { "description": "model or null" }, "400": { "description": "malformed id" } } },
      "patch": { "summary": "Increment the purchase counter", "responses": { "200": { "description": "update result", "content": {"application/json": {"schema": {"$ref":"#/components/schemas/UpdateResult"}}} }, "400": { "description": "malformed id" } } },
      "delete": { "summary": "Delete a model and its purchases atomically", "responses": { "200": { "description": "deleted", "content": {"application/json": {"schema": {"$ref":"#/components/schemas/DeleteResult"}}} }, "400": { "description": "malformed id" }, "500": { "description": "transaction aborted" } } }
    },
    "/models/{id}/image": {
      "post": { "summary": "Upload a model image (when object storage is configured)", "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"image":{"type":"string","format":"binary"}}} } } }, "responses": { "201": { "description": "key and presigned url" }, "404": { "description": "model not found" } } }
    },
    "/update-model/{id}": {
      "patch": { "summary": "Replace the descriptive fields of a model", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/ModelFields"} } } }, "responses": { "200": { "description": "update result" }, "400": { "description": "malformed id" } } }
    },
    "/purchased": {
      "get": { "summary": "List purchases", "responses": { "200": { "description": "purchases" } } },
      "post": { "summary": "Record a purchase", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Purchase"} } } }, "responses": { "200": { "description": "inserted" }, "400": { "description": "malformed modelId" } } }
    },
    "/purchased/{id}": {
      "get": { "summary": "Get a purchase by model id and purchaser email", "parameters": [{"name":"email","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "purchase or null" } } }
    },
    "/models-purchased-joined": { "get": { "summary": "Purchases joined with their model", "responses": { "200": { "description": "joined purchases" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
