package dispatch

import (
	"net/url"
	"strings"

	"ptcli/internal/features/discovery"
)

// Resolution is the outcome of walking the tree with a user invocation:
// exactly one route, its placeholder bindings, the fully substituted path,
// and any leftover name=value arguments carried as query parameters.
type Resolution struct {
	Route  *discovery.RouteDescriptor
	Values map[string]string
	Query  url.Values
	Path   string
}

// Resolve walks the tree with the user-supplied path and trailing name=value
// arguments. Literal children win over the parameter child at every level.
// methodHint selects among multiple methods on the terminal node (an empty
// hint prefers GET, then the lexicographically first method).
func Resolve(root *Node, rawPath string, args []string, methodHint string) (*Resolution, error) {
	values := make(map[string]string)
	query := url.Values{}

	// Split trailing arguments into placeholder bindings and query values.
	// A trailing token without '=' is a stray path segment, not a parameter.
	kv := make(map[string]string)
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, discovery.Errf(discovery.ExtraArguments,
				"unexpected argument %q after path %s (want name=value)", arg, rawPath)
		}
		kv[name] = value
	}

	segments := splitUserPath(rawPath)
	node := root
	for i, seg := range segments {
		if child, ok := node.Children[seg]; ok {
			node = child
			continue
		}
		if node.Param != nil {
			name, _ := discovery.IsParam(node.Param.Segment)
			values[name] = seg
			node = node.Param
			continue
		}
		if node.HasRoute() {
			return nil, discovery.Errf(discovery.ExtraArguments,
				"segments %q exceed route %s", strings.Join(segments[i:], "/"), nodePath(segments[:i]))
		}
		return nil, discovery.Errf(discovery.UnknownRoute,
			"no route matches segment %q in %s", seg, rawPath)
	}

	// The path may stop short of a parameterized endpoint; name=value
	// arguments can still fill the remaining placeholders.
	for !node.HasRoute() && node.Param != nil {
		name, _ := discovery.IsParam(node.Param.Segment)
		value, ok := kv[name]
		if !ok {
			return nil, discovery.Errf(discovery.MissingParameter,
				"route %s%s requires a value for <%s>", nodePath(segments), "/"+node.Param.Segment, name)
		}
		values[name] = value
		delete(kv, name)
		node = node.Param
	}
	if !node.HasRoute() {
		return nil, discovery.Errf(discovery.UnknownRoute,
			"%s is not a callable route", nodePath(segments))
	}

	route := pickMethod(node, methodHint)

	// Fill remaining placeholders from name=value arguments; whatever is
	// left over rides along as query parameters.
	for _, name := range route.Params {
		if _, bound := values[name]; bound {
			continue
		}
		value, ok := kv[name]
		if !ok {
			return nil, discovery.Errf(discovery.MissingParameter,
				"route %s requires a value for <%s>", route.Path, name)
		}
		values[name] = value
		delete(kv, name)
	}
	for name, value := range kv {
		query.Set(name, value)
	}

	return &Resolution{
		Route:  route,
		Values: values,
		Query:  query,
		Path:   substitute(route, values),
	}, nil
}

// splitUserPath normalizes the user's path argument the way the original
// client did: doubled separators collapse and outer separators are ignored.
func splitUserPath(raw string) []string {
	raw = strings.ReplaceAll(raw, "//", "/")
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "/")
}

func pickMethod(node *Node, hint string) *discovery.RouteDescriptor {
	if hint != "" {
		if r, ok := node.Routes[hint]; ok {
			return r
		}
	}
	if r, ok := node.Routes["GET"]; ok {
		return r
	}
	return node.Routes[node.SortedMethods()[0]]
}

func substitute(route *discovery.RouteDescriptor, values map[string]string) string {
	segs := route.Segments()
	out := make([]string, len(segs))
	for i, seg := range segs {
		if name, ok := discovery.IsParam(seg); ok {
			out[i] = url.PathEscape(values[name])
			continue
		}
		out[i] = seg
	}
	return "/" + strings.Join(out, "/")
}

func nodePath(segments []string) string {
	return "/" + strings.Join(segments, "/")
}
