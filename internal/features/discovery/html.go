package discovery

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// parseHTMLListing scrapes a rendered index page for route anchors and
// textual "METHOD /path description" lines. Scraping is best-effort: markup
// that does not encode a recognizable path is ignored.
func parseHTMLListing(body []byte) []RouteDescriptor {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var routes []RouteDescriptor
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if d, ok := descriptorFromAnchor(n); ok {
					routes = append(routes, d)
				}
				return
			case "li", "pre", "code":
				if !containsAnchor(n) {
					routes = append(routes, descriptorsFromText(nodeText(n))...)
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return routes
}

// descriptorFromAnchor reads an <a href="..."> element. The href carries the
// path template; the anchor text may name a method, and text trailing the
// anchor inside its parent serves as the description.
func descriptorFromAnchor(n *html.Node) (RouteDescriptor, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = attr.Val
			break
		}
	}
	path, ok := hrefPath(href)
	if !ok {
		return RouteDescriptor{}, false
	}

	method := ""
	desc := ""
	text := collapseSpace(nodeText(n))
	if fields := strings.Fields(text); len(fields) > 0 && knownMethods[strings.ToUpper(fields[0])] {
		method = fields[0]
		text = strings.Join(fields[1:], " ")
	}
	// Anchor text that is not just the path again doubles as a description.
	if text != "" && text != path && !strings.HasPrefix(text, "/") {
		desc = text
	}
	if desc == "" {
		desc = trailingText(n)
	}

	return newDescriptor(path, method, desc)
}

// hrefPath extracts a usable path template from an href value. Links to
// other hosts are not routes of this server and are skipped.
func hrefPath(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if strings.Contains(href, "://") || strings.HasPrefix(href, "//") {
		return "", false
	}
	// Placeholder markers survive URL escaping in rendered pages.
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	if !strings.HasPrefix(href, "/") {
		return "", false
	}
	return href, true
}

// descriptorsFromText scans free-form listing text, one candidate per line.
func descriptorsFromText(text string) []RouteDescriptor {
	var routes []RouteDescriptor
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		pathIdx := -1
		for i, f := range fields {
			if strings.HasPrefix(f, "/") {
				pathIdx = i
				break
			}
		}
		if pathIdx < 0 {
			continue
		}
		method := ""
		if pathIdx > 0 && knownMethods[strings.ToUpper(fields[pathIdx-1])] {
			method = fields[pathIdx-1]
		}
		desc := strings.TrimLeft(strings.Join(fields[pathIdx+1:], " "), "-–: ")
		if d, ok := newDescriptor(fields[pathIdx], method, desc); ok {
			routes = append(routes, d)
		}
	}
	return routes
}

func containsAnchor(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "a" {
			return true
		}
		if containsAnchor(c) {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// trailingText picks up a description written after the anchor, as in
// <li><a href="/project">/project</a> - list tracked projects</li>.
func trailingText(n *html.Node) string {
	var parts []string
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.TextNode {
			parts = append(parts, s.Data)
		}
	}
	return strings.TrimLeft(collapseSpace(strings.Join(parts, " ")), "-–: ")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
