package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the content API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON, one path set per kind
func RegisterSwagger(rg gin.IRouter, kinds []record.Kind) {
	doc := openAPIDoc(kinds)

	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, doc)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>vrd-lab API — Swagger</title>
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

type obj = map[string]any

func openAPIDoc(kinds []record.Kind) obj {
	paths := obj{
		"/":       obj{"get": op("Liveness greeting", "200", "greeting text")},
		"/health": obj{"get": op("Liveness check", "200", "healthy")},
		"/ready": obj{"get": obj{"summary": "Readiness check", "responses": obj{
			"200": obj{"description": "ready"},
			"503": obj{"description": "not ready"},
		}}},
		"/metrics":            obj{"get": op("Prometheus metrics", "200", "exposition text")},
		"/uploads/{filename}": obj{"get": op("Download a stored attachment", "200", "file contents")},
	}

	for _, k := range kinds {
		schema := bodySchema(k)
		idParam := []obj{{"name": "id", "in": "path", "required": true, "schema": obj{"type": "string"}}}
		paths["/"+k.Name+"/create"] = obj{"post": obj{
			"summary":     "Create a " + k.Name + " record",
			"requestBody": obj{"content": schema},
			"responses": obj{
				"200": obj{"description": k.Messages.Created},
				"400": obj{"description": "invalid body or missing file"},
			},
		}}
		paths["/"+k.Name+"/all"] = obj{"get": op("List all "+k.Name+" records", "200", "Success!")}

		del := obj{"200": obj{"description": k.Messages.Deleted}}
		if k.HasAttachment() {
			del["404"] = obj{"description": k.Messages.NotFound}
		}
		paths["/"+k.Name+"/{id}"] = obj{
			"get": obj{"summary": "Get a " + k.Name + " record", "parameters": idParam,
				"responses": obj{"200": obj{"description": "record or null"}}},
			"put": obj{"summary": "Update (or create) a " + k.Name + " record", "parameters": idParam,
				"requestBody": obj{"content": schema},
				"responses":   obj{"200": obj{"description": "result and fields under \"" + k.EchoKey + "\""}}},
			"delete": obj{"summary": "Delete a " + k.Name + " record", "parameters": idParam, "responses": del},
		}
	}

	return obj{
		"openapi": "3.0.0",
		"info":    obj{"title": "vrd-lab", "version": "v1.0.0"},
		"paths":   paths,
	}
}

func op(summary, code, desc string) obj {
	return obj{"summary": summary, "responses": obj{code: obj{"description": desc}}}
}

func bodySchema(k record.Kind) obj {
	props := obj{}
	for _, f := range k.Fields {
		props[f] = obj{"type": "string"}
	}
	schema := obj{"type": "object", "properties": props}
	if len(k.Fields) == 0 {
		schema["additionalProperties"] = true
	}
	content := obj{
		"application/json":                  obj{"schema": schema},
		"application/x-www-form-urlencoded": obj{"schema": schema},
	}
	if k.HasAttachment() {
		mp := obj{k.AttachmentField: obj{"type": "string", "format": "binary"}}
		for f, v := range props {
			mp[f] = v
		}
		content["multipart/form-data"] = obj{"schema": obj{"type": "object", "properties": mp}}
	}
	return content
}
