// Package completion serializes a command tree into static shell completion
// scripts. The scripts are generated from a manifest fetched moments earlier
// in the same process; because routes are rediscovered live on every other
// invocation, a generated script can drift from the server's current route
// set. That staleness is an accepted limitation, not something the exporter
// papers over with a cache.
package completion

import (
	"fmt"
	"sort"
	"strings"

	"ptcli/internal/features/discovery"
	"ptcli/internal/features/dispatch"
)

// Shell is a supported completion target.
type Shell string

const (
	Bash Shell = "bash"
	Zsh  Shell = "zsh"
)

// ParseShell validates a user-supplied shell name.
func ParseShell(name string) (Shell, error) {
	switch Shell(strings.ToLower(name)) {
	case Bash:
		return Bash, nil
	case Zsh:
		return Zsh, nil
	}
	return "", fmt.Errorf("unsupported shell %q (want bash or zsh)", name)
}

// topLevel lists the static subcommands offered alongside the dynamic route
// paths.
var topLevel = []string{"help", "info", "projects", "route", "serve"}

// level is one completion point in the hierarchy: the segment candidates to
// offer once the user's path matches pattern. free marks a level whose next
// segment is a parameter placeholder and therefore completes as free text
// (parameter values are not enumerable from the manifest).
type level struct {
	pattern  string // shell glob over the partial path, e.g. /project/*/*
	segments []string
	free     bool
}

// levels flattens the tree into completion points, deepest patterns first so
// shell case statements match most-specific-first, lexicographic within a
// depth. Two structurally identical trees always flatten identically, which
// is what makes repeated exports byte-identical.
func levels(root *dispatch.Node) []level {
	var out []level
	var walk func(n *dispatch.Node, prefix string)
	walk = func(n *dispatch.Node, prefix string) {
		lv := level{pattern: prefix + "/*"}
		for _, child := range n.SortedChildren() {
			if _, ok := discovery.IsParam(child.Segment); ok {
				lv.free = true
				continue
			}
			lv.segments = append(lv.segments, child.Segment)
		}
		if len(lv.segments) > 0 || lv.free {
			out = append(out, lv)
		}
		for _, child := range n.SortedChildren() {
			if _, ok := discovery.IsParam(child.Segment); ok {
				walk(child, prefix+"/*")
				continue
			}
			walk(child, prefix+"/"+child.Segment)
		}
	}
	walk(root, "")

	sort.SliceStable(out, func(i, j int) bool {
		di := strings.Count(out[i].pattern, "/")
		dj := strings.Count(out[j].pattern, "/")
		if di != dj {
			return di > dj
		}
		return out[i].pattern < out[j].pattern
	})
	return out
}

// Script serializes the tree into a completion script for the given shell.
// An empty tree is refused: a script offering no subcommands would silently
// mask an empty manifest.
func Script(shell Shell, prog string, root *dispatch.Node) (string, error) {
	if root == nil || (len(root.Children) == 0 && root.Param == nil) {
		return "", discovery.Errf(discovery.EmptyManifest,
			"refusing to export %s completion for an empty route tree", shell)
	}

	switch shell {
	case Bash:
		return bashScript(prog, levels(root), rootPaths(root)), nil
	case Zsh:
		return zshScript(prog, levels(root), rootPaths(root)), nil
	}
	return "", fmt.Errorf("unsupported shell %q", shell)
}

// rootPaths lists the first-level route paths offered before the user has
// typed a separator.
func rootPaths(root *dispatch.Node) []string {
	var paths []string
	for _, child := range root.SortedChildren() {
		if _, ok := discovery.IsParam(child.Segment); ok {
			continue
		}
		paths = append(paths, "/"+child.Segment)
	}
	return paths
}

func bashScript(prog string, lvls []level, roots []string) string {
	fn := "_" + identifier(prog) + "_completions"

	var b strings.Builder
	fmt.Fprintf(&b, "# bash completion for %s, generated from the server's route listing\n", prog)
	fmt.Fprintf(&b, "%s()\n{\n", fn)
	b.WriteString("    local cur prev\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")

	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(topLevel, " "))
	b.WriteString("        return 0\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    if [[ ${COMP_WORDS[1]} != route ]]; then\n")
	b.WriteString("        return 0\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"$cur\" in\n")
	for _, lv := range lvls {
		if lv.free && len(lv.segments) == 0 {
			fmt.Fprintf(&b, "        %s)\n            COMPREPLY=()\n            ;;\n", lv.pattern)
			continue
		}
		fmt.Fprintf(&b, "        %s)\n            COMPREPLY=( $(compgen -W \"%s\" -P \"${cur%%/*}/\" -- \"${cur##*/}\") )\n            ;;\n",
			lv.pattern, strings.Join(lv.segments, " "))
	}
	fmt.Fprintf(&b, "        *)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n            ;;\n", strings.Join(roots, " "))
	b.WriteString("    esac\n")
	b.WriteString("    return 0\n")
	b.WriteString("}\n")
	fmt.Fprintf(&b, "complete -F %s %s\n", fn, prog)
	return b.String()
}

func zshScript(prog string, lvls []level, roots []string) string {
	fn := "_" + identifier(prog)

	var b strings.Builder
	fmt.Fprintf(&b, "#compdef %s\n", prog)
	fmt.Fprintf(&b, "# zsh completion for %s, generated from the server's route listing\n", prog)
	fmt.Fprintf(&b, "%s() {\n", fn)
	b.WriteString("    local cur\n")
	b.WriteString("    cur=\"${words[CURRENT]}\"\n\n")

	b.WriteString("    if (( CURRENT == 2 )); then\n")
	fmt.Fprintf(&b, "        _values 'command' %s\n", strings.Join(topLevel, " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    if [[ \"$words[2]\" != route ]]; then\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"$cur\" in\n")
	for _, lv := range lvls {
		if lv.free && len(lv.segments) == 0 {
			fmt.Fprintf(&b, "        %s)\n            ;;\n", lv.pattern)
			continue
		}
		fmt.Fprintf(&b, "        %s)\n            compadd -P \"${cur%%/*}/\" -- %s\n            ;;\n",
			lv.pattern, strings.Join(lv.segments, " "))
	}
	fmt.Fprintf(&b, "        *)\n            compadd -- %s\n            ;;\n", strings.Join(roots, " "))
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	fmt.Fprintf(&b, "%s \"$@\"\n", fn)
	return b.String()
}

func identifier(prog string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(prog)
}
