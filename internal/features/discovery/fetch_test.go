package discovery_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptcli/internal/features/discovery"
)

func TestNormalizeBaseURL(t *testing.T) {
	t.Run("should strip trailing slashes", func(t *testing.T) {
		base, err := discovery.NormalizeBaseURL("https://c3g-portal.sd4h.ca/")
		require.NoError(t, err)
		assert.Equal(t, "https://c3g-portal.sd4h.ca", base)
	})

	t.Run("should accept plain http", func(t *testing.T) {
		base, err := discovery.NormalizeBaseURL("http://localhost:8080")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", base)
	})

	t.Run("should reject other schemes", func(t *testing.T) {
		_, err := discovery.NormalizeBaseURL("ftp://example.com")
		assert.Error(t, err)
	})

	t.Run("should reject a bare hostname without scheme", func(t *testing.T) {
		_, err := discovery.NormalizeBaseURL("example.com")
		assert.Error(t, err)
	})
}

func TestParseJSONListing(t *testing.T) {
	t.Run("should parse an endpoints envelope", func(t *testing.T) {
		body := []byte(`{
			"service": "pt-server",
			"endpoints": [
				{"method": "GET", "path": "/projects", "description": "List projects"},
				{"method": "POST", "path": "/ingest/readsets", "description": "Ingest readsets"}
			]
		}`)

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 2)
		assert.Equal(t, "/projects", manifest.Routes[0].Path)
		assert.Equal(t, "GET", manifest.Routes[0].Method)
		assert.Equal(t, "POST", manifest.Routes[1].Method)
	})

	t.Run("should parse a bare array with url instead of path", func(t *testing.T) {
		body := []byte(`[
			{"url": "/health"},
			{"url": "/project/<name>", "description": "Project details"}
		]`)

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 2)
		assert.Equal(t, "GET", manifest.Routes[0].Method, "method should default to GET")
		assert.Equal(t, "/project/<name>", manifest.Routes[1].Path)
		assert.Equal(t, []string{"name"}, manifest.Routes[1].Params)
	})

	t.Run("should canonicalize brace placeholders to angle brackets", func(t *testing.T) {
		body := []byte(`[{"method": "GET", "path": "/project/{name}/readsets"}]`)

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 1)
		assert.Equal(t, "/project/<name>/readsets", manifest.Routes[0].Path)
		assert.Equal(t, []string{"name"}, manifest.Routes[0].Params)
	})

	t.Run("should drop entries without a leading slash", func(t *testing.T) {
		body := []byte(`[
			{"method": "GET", "path": "projects"},
			{"method": "GET", "path": "/projects"}
		]`)

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 1)
		assert.Equal(t, "/projects", manifest.Routes[0].Path)
	})

	t.Run("should drop entries with unknown methods", func(t *testing.T) {
		body := []byte(`[
			{"method": "FETCH", "path": "/projects"},
			{"method": "delete", "path": "/projects"}
		]`)

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 1)
		assert.Equal(t, "DELETE", manifest.Routes[0].Method, "method should be upper-cased")
	})

	t.Run("should deduplicate repeated path and method pairs", func(t *testing.T) {
		body := []byte(`[
			{"method": "GET", "path": "/projects", "description": "first"},
			{"method": "GET", "path": "/projects", "description": "second"}
		]`)

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 1)
		assert.Equal(t, "first", manifest.Routes[0].Description, "first occurrence should win")
	})

	t.Run("should fail with empty manifest when nothing is recognizable", func(t *testing.T) {
		_, err := discovery.Parse("http://localhost:8080", []byte(`{"service": "pt-server"}`))
		kind, ok := discovery.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, discovery.EmptyManifest, kind)
	})
}

func TestParseHTMLListing(t *testing.T) {
	t.Run("should scrape anchor lists with trailing descriptions", func(t *testing.T) {
		body := []byte(`<html><body><h1>pt-server</h1><ul>
			<li><a href="/projects">/projects</a> - List projects</li>
			<li><a href="/project/<name>">/project/&lt;name&gt;</a> - Project details</li>
		</ul></body></html>`)

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 2)
		assert.Equal(t, "/projects", manifest.Routes[0].Path)
		assert.Equal(t, "List projects", manifest.Routes[0].Description)
		assert.Equal(t, "/project/<name>", manifest.Routes[1].Path)
		assert.Equal(t, []string{"name"}, manifest.Routes[1].Params)
	})

	t.Run("should take the method from the anchor text", func(t *testing.T) {
		body := []byte(`<ul><li><a href="/ingest/readsets">POST /ingest/readsets</a></li></ul>`)

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 1)
		assert.Equal(t, "POST", manifest.Routes[0].Method)
	})

	t.Run("should scrape plain text listings in pre blocks", func(t *testing.T) {
		body := []byte("<pre>GET /health - liveness probe\nPOST /ingest/readsets - ingest a batch\n</pre>")

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 2)
		assert.Equal(t, "/health", manifest.Routes[0].Path)
		assert.Equal(t, "liveness probe", manifest.Routes[0].Description)
		assert.Equal(t, "POST", manifest.Routes[1].Method)
	})

	t.Run("should skip external links", func(t *testing.T) {
		body := []byte(`<ul>
			<li><a href="https://example.com/docs">docs</a></li>
			<li><a href="/health">/health</a></li>
		</ul>`)

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 1)
		assert.Equal(t, "/health", manifest.Routes[0].Path)
	})

	t.Run("should strip query strings and fragments from hrefs", func(t *testing.T) {
		body := []byte(`<a href="/projects?format=json#list">/projects</a>`)

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 1)
		assert.Equal(t, "/projects", manifest.Routes[0].Path)
	})

	t.Run("should unescape percent-encoded placeholders in hrefs", func(t *testing.T) {
		body := []byte(`<a href="/project/%3Cname%3E">/project/&lt;name&gt;</a>`)

		manifest, err := discovery.Parse("http://localhost:8080", body)
		require.NoError(t, err)
		require.Len(t, manifest.Routes, 1)
		assert.Equal(t, "/project/<name>", manifest.Routes[0].Path)
	})
}

func TestFetch(t *testing.T) {
	t.Run("should fetch and parse a JSON listing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"endpoints": [{"method": "GET", "path": "/health"}]}`))
		}))
		defer srv.Close()

		manifest, err := discovery.Fetch(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, srv.URL, manifest.BaseURL)
		require.Len(t, manifest.Routes, 1)
		assert.Equal(t, "/health", manifest.Routes[0].Path)
	})

	t.Run("should classify a non-2xx listing as server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := discovery.Fetch(context.Background(), srv.Client(), srv.URL)
		kind, ok := discovery.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, discovery.ServerError, kind)
	})

	t.Run("should classify an unreachable host as network failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := discovery.Fetch(context.Background(), http.DefaultClient, srv.URL)
		kind, ok := discovery.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, discovery.NetworkFailure, kind)
	})
}

func TestKindExitCodes(t *testing.T) {
	t.Run("should assign each kind a stable exit code", func(t *testing.T) {
		assert.Equal(t, 2, discovery.NetworkFailure.ExitCode())
		assert.Equal(t, 3, discovery.ServerError.ExitCode())
		assert.Equal(t, 4, discovery.EmptyManifest.ExitCode())
		assert.Equal(t, 5, discovery.ManifestConflict.ExitCode())
		assert.Equal(t, 6, discovery.UnknownRoute.ExitCode())
		assert.Equal(t, 7, discovery.MissingParameter.ExitCode())
		assert.Equal(t, 8, discovery.ExtraArguments.ExitCode())
	})

	t.Run("should recover the kind through wrapping", func(t *testing.T) {
		err := discovery.Wrapf(discovery.NetworkFailure, context.DeadlineExceeded, "fetching listing")
		kind, ok := discovery.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, discovery.NetworkFailure, kind)
	})
}
