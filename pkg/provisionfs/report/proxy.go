package report

import (
	"io"
	"strconv"
	"text/template"
)

var proxyTemplate = template.Must(template.New("nginx").Parse(`server {
    listen 80;
    server_name YOUR_DOMAIN.com;

    location / {
        proxy_pass http://127.0.0.1:{{.Port}};
        proxy_set_header Host $host;
        # ... other proxy headers
    }
}
`))

// WriteProxyConfig writes an nginx server block proxying to the host port.
func WriteProxyConfig(w io.Writer, port int) error {
	return proxyTemplate.Execute(w, struct{ Port int }{port})
}

// Endpoint is the URL that starts the application's install tool.
func Endpoint(port int) string {
	return "http://YOUR_VPS_IP:" + strconv.Itoa(port) + "/install/"
}
