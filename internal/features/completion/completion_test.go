package completion_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptcli/internal/features/completion"
	"ptcli/internal/features/discovery"
	"ptcli/internal/features/dispatch"
)

func demoTree(t *testing.T) *dispatch.Node {
	t.Helper()
	manifest, err := discovery.Parse("http://localhost:8080", []byte(`[
		{"method": "GET", "path": "/health"},
		{"method": "GET", "path": "/projects"},
		{"method": "GET", "path": "/project/<name>"},
		{"method": "GET", "path": "/project/<name>/readsets"},
		{"method": "POST", "path": "/ingest/readsets"}
	]`))
	require.NoError(t, err)
	root, err := dispatch.Build(manifest)
	require.NoError(t, err)
	return root
}

func TestParseShell(t *testing.T) {
	t.Run("should accept bash and zsh in any case", func(t *testing.T) {
		shell, err := completion.ParseShell("bash")
		require.NoError(t, err)
		assert.Equal(t, completion.Bash, shell)

		shell, err = completion.ParseShell("Zsh")
		require.NoError(t, err)
		assert.Equal(t, completion.Zsh, shell)
	})

	t.Run("should reject other shells", func(t *testing.T) {
		_, err := completion.ParseShell("fish")
		assert.Error(t, err)
	})
}

func TestScript(t *testing.T) {
	t.Run("should emit a bash script wired to the program name", func(t *testing.T) {
		script, err := completion.Script(completion.Bash, "pt-cli", demoTree(t))
		require.NoError(t, err)

		assert.Contains(t, script, "_pt_cli_completions()")
		assert.Contains(t, script, "complete -F _pt_cli_completions pt-cli")
		assert.Contains(t, script, `compgen -W "help info projects route serve"`)
	})

	t.Run("should offer first-level paths by default", func(t *testing.T) {
		script, err := completion.Script(completion.Bash, "pt-cli", demoTree(t))
		require.NoError(t, err)
		assert.Contains(t, script, `compgen -W "/health /ingest /project /projects"`)
	})

	t.Run("should complete segments below a placeholder", func(t *testing.T) {
		script, err := completion.Script(completion.Bash, "pt-cli", demoTree(t))
		require.NoError(t, err)

		// /project/<anything>/ must offer readsets regardless of the value typed.
		assert.Contains(t, script, "/project/*/*)")
		assert.Contains(t, script, `compgen -W "readsets" -P "${cur%/*}/"`)
	})

	t.Run("should match deeper patterns before shallower ones", func(t *testing.T) {
		script, err := completion.Script(completion.Bash, "pt-cli", demoTree(t))
		require.NoError(t, err)

		deep := strings.Index(script, "\n        /project/*/*)")
		shallow := strings.Index(script, "\n        /*)")
		require.GreaterOrEqual(t, deep, 0)
		require.GreaterOrEqual(t, shallow, 0)
		assert.Less(t, deep, shallow)
	})

	t.Run("should emit a zsh script with a compdef header", func(t *testing.T) {
		script, err := completion.Script(completion.Zsh, "pt-cli", demoTree(t))
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(script, "#compdef pt-cli\n"))
		assert.Contains(t, script, "_values 'command' help info projects route serve")
		assert.Contains(t, script, `compadd -P "${cur%/*}/" -- readsets`)
	})

	t.Run("should be byte-identical across repeated exports", func(t *testing.T) {
		first, err := completion.Script(completion.Bash, "pt-cli", demoTree(t))
		require.NoError(t, err)
		second, err := completion.Script(completion.Bash, "pt-cli", demoTree(t))
		require.NoError(t, err)
		assert.Equal(t, first, second)

		first, err = completion.Script(completion.Zsh, "pt-cli", demoTree(t))
		require.NoError(t, err)
		second, err = completion.Script(completion.Zsh, "pt-cli", demoTree(t))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("should refuse an empty tree", func(t *testing.T) {
		_, err := completion.Script(completion.Bash, "pt-cli", &dispatch.Node{})
		kind, ok := discovery.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, discovery.EmptyManifest, kind)
	})
}
