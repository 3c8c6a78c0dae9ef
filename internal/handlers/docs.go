// docs.go serves the hand-written OpenAPI 3.0 document and a Swagger UI page
// that loads it. The YAML lives next to the handlers and is embedded, so the
// binary needs no docs directory at runtime and no generation step.
package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

// openAPISpec is the OpenAPI 3.0 YAML specification embedded at compile time.
// Go Pattern: The `//go:embed` directive tells the compiler to include
// the file contents in the binary. The variable is populated at build time,
// not runtime — so the file must exist when you run `go build`.
//
//go:embed openapi.yaml
var openAPISpec []byte

// ServeOpenAPISpec returns the raw OpenAPI YAML specification.
// GET /api/docs/openapi.yaml
func (h *Handler) ServeOpenAPISpec(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", openAPISpec)
}

// ServeSwaggerUI returns an HTML page that loads Swagger UI from a CDN
// and points it at our OpenAPI spec.
// GET /api/docs
//
// Go Pattern: For simple HTML responses, a raw string is fine.
// For complex templates, use Go's html/template package.
func (h *Handler) ServeSwaggerUI(c *gin.Context) {
	html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Storyboard API — Documentation</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>
    body { margin: 0; background: #fafafa; }
    .swagger-ui .topbar { display: none; }
    .swagger-ui .info { margin: 20px 0; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/api/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [
        SwaggerUIBundle.presets.apis,
        SwaggerUIBundle.SwaggerUIStandalonePreset
      ],
      layout: 'BaseLayout',
      deepLinking: true,
      defaultModelsExpandDepth: 2,
      defaultModelExpandDepth: 2,
      persistAuthorization: true,
    });
  </script>
</body>
</html>`

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
