package dispatch_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptcli/internal/features/discovery"
	"ptcli/internal/features/dispatch"
)

func buildTree(t *testing.T, routes ...[3]string) *dispatch.Node {
	t.Helper()
	root, err := dispatch.Build(manifestOf(t, routes...))
	require.NoError(t, err)
	return root
}

func TestResolve(t *testing.T) {
	t.Run("should resolve a literal path", func(t *testing.T) {
		root := buildTree(t, [3]string{"GET", "/projects", "List projects"})

		res, err := dispatch.Resolve(root, "projects", nil, "")
		require.NoError(t, err)
		assert.Equal(t, "/projects", res.Path)
		assert.Equal(t, "GET", res.Route.Method)
	})

	t.Run("should bind placeholder values from path segments", func(t *testing.T) {
		root := buildTree(t, [3]string{"GET", "/project/<name>/readsets", ""})

		res, err := dispatch.Resolve(root, "/project/moh-q/readsets", nil, "")
		require.NoError(t, err)
		assert.Equal(t, "/project/moh-q/readsets", res.Path)
		assert.Equal(t, map[string]string{"name": "moh-q"}, res.Values)
	})

	t.Run("should prefer a literal child over the placeholder", func(t *testing.T) {
		root := buildTree(t,
			[3]string{"GET", "/project/new", "Creation form"},
			[3]string{"GET", "/project/<name>", "Project details"},
		)

		res, err := dispatch.Resolve(root, "/project/new", nil, "")
		require.NoError(t, err)
		assert.Equal(t, "Creation form", res.Route.Description)
		assert.Empty(t, res.Values)

		res, err = dispatch.Resolve(root, "/project/old", nil, "")
		require.NoError(t, err)
		assert.Equal(t, "Project details", res.Route.Description)
		assert.Equal(t, "old", res.Values["name"])
	})

	t.Run("should fill missing placeholders from name=value arguments", func(t *testing.T) {
		root := buildTree(t, [3]string{"GET", "/project/<name>", ""})

		res, err := dispatch.Resolve(root, "/project", []string{"name=moh-q"}, "")
		require.NoError(t, err)
		assert.Equal(t, "/project/moh-q", res.Path)
	})

	t.Run("should carry leftover name=value arguments as query parameters", func(t *testing.T) {
		root := buildTree(t, [3]string{"GET", "/projects", ""})

		res, err := dispatch.Resolve(root, "projects", []string{"format=json"}, "")
		require.NoError(t, err)
		assert.Equal(t, "json", res.Query.Get("format"))
	})

	t.Run("should escape placeholder values in the substituted path", func(t *testing.T) {
		root := buildTree(t, [3]string{"GET", "/project/<name>", ""})

		res, err := dispatch.Resolve(root, "/project", []string{"name=a b/c"}, "")
		require.NoError(t, err)
		assert.Equal(t, "/project/a%20b%2Fc", res.Path)
	})

	t.Run("should tolerate doubled and outer slashes", func(t *testing.T) {
		root := buildTree(t, [3]string{"GET", "/project/<name>/readsets", ""})

		res, err := dispatch.Resolve(root, "//project//moh-q//readsets/", nil, "")
		require.NoError(t, err)
		assert.Equal(t, "/project/moh-q/readsets", res.Path)
	})

	t.Run("should report an unknown route", func(t *testing.T) {
		root := buildTree(t, [3]string{"GET", "/projects", ""})

		_, err := dispatch.Resolve(root, "/nonsense", nil, "")
		kind, ok := discovery.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, discovery.UnknownRoute, kind)
	})

	t.Run("should report a non-callable intermediate node as unknown", func(t *testing.T) {
		root := buildTree(t, [3]string{"GET", "/project/<name>/readsets", ""})

		_, err := dispatch.Resolve(root, "/project/moh-q", nil, "")
		kind, ok := discovery.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, discovery.UnknownRoute, kind)
	})

	t.Run("should report a missing placeholder value", func(t *testing.T) {
		root := buildTree(t, [3]string{"GET", "/project/<name>", ""})

		_, err := dispatch.Resolve(root, "/project", nil, "")
		kind, ok := discovery.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, discovery.MissingParameter, kind)
	})

	t.Run("should report segments past a callable route as extra arguments", func(t *testing.T) {
		root := buildTree(t, [3]string{"GET", "/projects", ""})

		_, err := dispatch.Resolve(root, "/projects/extra", nil, "")
		kind, ok := discovery.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, discovery.ExtraArguments, kind)
	})

	t.Run("should reject trailing arguments that are not name=value", func(t *testing.T) {
		root := buildTree(t, [3]string{"GET", "/projects", ""})

		_, err := dispatch.Resolve(root, "projects", []string{"stray"}, "")
		kind, ok := discovery.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, discovery.ExtraArguments, kind)
	})

	t.Run("should honor the method hint when the node has several", func(t *testing.T) {
		root := buildTree(t,
			[3]string{"GET", "/project/<name>", ""},
			[3]string{"DELETE", "/project/<name>", ""},
		)

		res, err := dispatch.Resolve(root, "/project/moh-q", nil, "DELETE")
		require.NoError(t, err)
		assert.Equal(t, "DELETE", res.Route.Method)

		res, err = dispatch.Resolve(root, "/project/moh-q", nil, "")
		require.NoError(t, err)
		assert.Equal(t, "GET", res.Route.Method, "empty hint should prefer GET")
	})

	t.Run("should resolve every discovered route back to its own descriptor", func(t *testing.T) {
		manifest := manifestOf(t,
			[3]string{"GET", "/health", ""},
			[3]string{"GET", "/projects", ""},
			[3]string{"GET", "/project/<name>", ""},
			[3]string{"GET", "/project/<name>/readsets", ""},
			[3]string{"GET", "/admin/create_project/<name>", ""},
			[3]string{"POST", "/ingest/readsets", ""},
		)
		root, err := dispatch.Build(manifest)
		require.NoError(t, err)

		for _, route := range manifest.Routes {
			path := route.Path
			for _, name := range route.Params {
				path = strings.Replace(path, "<"+name+">", "v-"+name, 1)
			}
			res, err := dispatch.Resolve(root, path, nil, route.Method)
			require.NoError(t, err, "resolving %s %s", route.Method, path)
			assert.Equal(t, route.Path, res.Route.Path)
			assert.Equal(t, route.Method, res.Route.Method)
			assert.Equal(t, path, res.Path)
		}
	})

	t.Run("should fall back to the first method when GET is absent", func(t *testing.T) {
		root := buildTree(t,
			[3]string{"POST", "/ingest/readsets", ""},
			[3]string{"PUT", "/ingest/readsets", ""},
		)

		res, err := dispatch.Resolve(root, "/ingest/readsets", nil, "")
		require.NoError(t, err)
		assert.Equal(t, "POST", res.Route.Method)
	})
}
