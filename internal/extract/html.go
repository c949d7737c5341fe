package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// textFromHTML returns the text content of the first main-region element,
// or of <body> when the page has none. Script-like elements are skipped.
func textFromHTML(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	root := findFirst(doc, isMainRegion)
	if root == nil {
		root = findFirst(doc, func(n *html.Node) bool { return n.Data == "body" })
	}
	if root == nil {
		root = doc
	}
	var b strings.Builder
	collectText(root, &b)
	return strings.TrimSpace(b.String()), nil
}

func isMainRegion(n *html.Node) bool {
	if n.Data == "article" || n.Data == "main" {
		return true
	}
	for _, a := range n.Attr {
		if a.Key == "role" && a.Val == "main" {
			return true
		}
	}
	return false
}

// findFirst walks the tree in document order.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if isSkippedElement(n.Data) {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func isSkippedElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "script", "style", "noscript", "template", "svg":
		return true
	}
	return false
}
