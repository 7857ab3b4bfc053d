package http

import "html/template"

type errorData struct {
	Message   string
	Errors    []string
	IsDev     bool
	Reference string
}

// ErrorTemplate is the page served when a render fails.
var ErrorTemplate = template.Must(template.New("error").Parse(`<!doctype html>
<html lang="ru">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Error</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 800px; margin: 50px auto; padding: 0 20px; }
        h1 { color: #e74c3c; }
        pre { background: #f8f9fa; padding: 15px; border-radius: 5px; overflow-x: auto; }
    </style>
</head>
<body>
    <h1>Internal Server Error</h1>
    {{if .IsDev}}
    <pre class="message">{{.Message}}</pre>
    {{range .Errors}}
    <pre class="detail">{{.}}</pre>
    {{end}}
    {{else}}
    <p>An error occurred while processing your request.</p>
    {{end}}
    {{with .Reference}}
    <p class="reference">Reference: <code>{{.}}</code></p>
    {{end}}
</body>
</html>`))
