package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Doer issues one HTTP request. *client.Client satisfies it, as does
// *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NormalizeBaseURL validates that raw is a well-formed absolute http(s) URL
// and strips any trailing slash so path concatenation stays predictable.
func NormalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid url root %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("url root %q must be of the http(s)://location form", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url root %q has no host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// Fetch retrieves the route listing published at the root of baseURL and
// parses it into a RouteManifest. One request, no retries: a failed fetch is
// surfaced immediately rather than silently starting an empty session.
func Fetch(ctx context.Context, d Doer, baseURL string) (*RouteManifest, error) {
	base, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("building listing request for %s: %w", base, err)
	}
	req.Header.Set("Accept", "application/json, text/html")

	resp, err := d.Do(req)
	if err != nil {
		return nil, Wrapf(NetworkFailure, err, "fetching route listing from %s", base)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Errf(ServerError, "route listing at %s returned %s", base, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Wrapf(NetworkFailure, err, "reading route listing from %s", base)
	}

	return Parse(base, body)
}

// Parse turns a route-listing response body into a manifest. Structured
// decoding is attempted first; HTML scraping is the fallback. Elements that
// do not resolve to a recognizable path are skipped, never fatal. A listing
// with zero recognizable routes is fatal.
func Parse(baseURL string, body []byte) (*RouteManifest, error) {
	routes := parseJSONListing(body)
	if routes == nil {
		routes = parseHTMLListing(body)
	}
	if len(routes) == 0 {
		return nil, Errf(EmptyManifest, "no routes recognized in listing from %s", baseURL)
	}
	return &RouteManifest{BaseURL: baseURL, Routes: dedupe(routes)}, nil
}

// jsonRoute matches the shapes servers publish: either a bare array of
// descriptors or an {"endpoints": [...]} envelope.
type jsonRoute struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func parseJSONListing(body []byte) []RouteDescriptor {
	var entries []jsonRoute

	var envelope struct {
		Endpoints []jsonRoute `json:"endpoints"`
		Routes    []jsonRoute `json:"routes"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		entries = append(envelope.Endpoints, envelope.Routes...)
	}
	if entries == nil {
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil
		}
	}

	var routes []RouteDescriptor
	for _, e := range entries {
		path := e.Path
		if path == "" {
			path = e.URL
		}
		if d, ok := newDescriptor(path, e.Method, e.Description); ok {
			routes = append(routes, d)
		}
	}
	return routes
}
