package handlers

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
)

// Route is one entry of the published route catalog. Paths use the <name>
// placeholder spelling the client's parser understands.
type Route struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
}

// Catalog publishes the server's own route listing. Browsers get an HTML
// index whose anchors encode the routes; explicit ?format=json (or a
// non-curl API caller) gets the structured envelope the client decodes
// without scraping. curl is auto-detected and served plain text.
func Catalog(service string, routes []Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")

		if format == "" {
			userAgent := r.Header.Get("User-Agent")
			accept := r.Header.Get("Accept")
			switch {
			case strings.Contains(strings.ToLower(userAgent), "curl"):
				format = "text"
			case strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html"):
				format = "json"
			default:
				format = "html"
			}
		}

		switch format {
		case "json":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			payload := map[string]interface{}{
				"service":   service,
				"endpoints": routes,
			}
			if err := json.NewEncoder(w).Encode(payload); err != nil {
				http.Error(w, fmt.Sprintf("Failed to encode JSON: %v", err), http.StatusInternalServerError)
			}

		case "html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			writeCatalogAsHTML(w, service, routes)

		case "text", "ascii":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			writeCatalogAsText(w, service, routes)

		default:
			http.Error(w, "Invalid format parameter. Use 'json', 'html', or 'text'", http.StatusBadRequest)
		}
	}
}

func writeCatalogAsHTML(w http.ResponseWriter, service string, routes []Route) {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head><title>")
	b.WriteString(html.EscapeString(service))
	b.WriteString("</title></head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(service))
	b.WriteString("<p>Available routes. Each of them can be called with the pt-cli \"route\" sub-command.</p>\n")
	b.WriteString("<ul>\n")
	for _, route := range routes {
		fmt.Fprintf(&b, "  <li><a href=\"%s\">%s %s</a> - %s</li>\n",
			route.Path, route.Method, html.EscapeString(route.Path), html.EscapeString(route.Description))
	}
	b.WriteString("</ul>\n</body>\n</html>\n")

	fmt.Fprint(w, b.String())
}

func writeCatalogAsText(w http.ResponseWriter, service string, routes []Route) {
	var b strings.Builder

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s available routes\n", service)
	b.WriteString("────────────────────────────────────────────────────────────────────\n\n")
	for _, route := range routes {
		fmt.Fprintf(&b, "  %-6s %s\n", route.Method, route.Path)
		if route.Description != "" {
			fmt.Fprintf(&b, "         %s\n", route.Description)
		}
		b.WriteString("\n")
	}

	fmt.Fprint(w, b.String())
}
