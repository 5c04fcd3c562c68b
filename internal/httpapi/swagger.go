//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

const docTemplate = `{
  "swagger": "2.0",
  "info": {"title": "{{.Title}}", "description": "{{.Description}}", "version": "{{.Version}}"},
  "basePath": "{{.BasePath}}",
  "schemes": {{ marshal .Schemes }},
  "paths": {
    "/profiles": {"get": {"summary": "List tracker profiles", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/runs": {"post": {"summary": "Create a tracking run", "consumes": ["application/json"], "produces": ["application/json"],
      "responses": {"201": {"description": "Created"}, "400": {"description": "Unsupported tracker kind or bad config"}}}},
    "/runs/{id}": {
      "get": {"summary": "Get a run", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Run not found"}}},
      "delete": {"summary": "Close a run", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
        "responses": {"204": {"description": "Closed"}, "404": {"description": "Run not found"}}}
    },
    "/runs/{id}/init": {"post": {"summary": "Reinitialize a run's trackers", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
      "responses": {"200": {"description": "OK"}, "400": {"description": "Bad config"}, "404": {"description": "Run not found"}}}},
    "/runs/{id}/frames": {"post": {"summary": "Track one batch of detections", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
      "responses": {"200": {"description": "OK"}, "404": {"description": "Run not found"}, "409": {"description": "Batch does not fit the run's trackers"}}}},
    "/status": {"get": {"summary": "Service status", "responses": {"200": {"description": "OK"}}}},
    "/healthz": {"get": {"summary": "Liveness", "responses": {"200": {"description": "OK"}}}},
    "/readyz": {"get": {"summary": "Readiness", "responses": {"200": {"description": "Ready"}, "503": {"description": "Not ready"}}}}
  }
}`

var swaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "trackd API",
	Description:      "Multi-object tracking runs over detector output.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(swaggerInfo.InstanceName(), swaggerInfo)
}

// MountSwagger serves the swagger UI and doc.json under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
