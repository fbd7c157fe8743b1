// Package lexical extracts plain text from Lexical editor JSON. Note content
// may arrive as a rich-text document tree; the engine embeds and indexes the
// readable text only.
package lexical

import (
	"encoding/json"
	"strings"
)

type root struct {
	Root node `json:"root"`
}

type node struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Tag      string `json:"tag,omitempty"`
	URL      string `json:"url,omitempty"`
	ListType string `json:"listType,omitempty"`
	Children []node `json:"children,omitempty"`
}

// ParseContent extracts plain text from a Lexical JSON document. Content that
// is not Lexical JSON is returned unchanged, so plain-text notes pass through.
func ParseContent(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, `{"root":`) {
		return content
	}

	var doc root
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return content
	}

	var sb strings.Builder
	walk(doc.Root, &sb, 0)
	return strings.TrimSpace(sb.String())
}

func walk(n node, sb *strings.Builder, depth int) {
	switch n.Type {
	case "text":
		sb.WriteString(n.Text)

	case "linebreak":
		sb.WriteString("\n")

	case "link", "autolink":
		for _, child := range n.Children {
			walk(child, sb, depth)
		}
		if n.URL != "" {
			sb.WriteString(" (")
			sb.WriteString(n.URL)
			sb.WriteString(")")
		}

	case "list":
		for _, child := range n.Children {
			if child.Type != "listitem" {
				continue
			}
			sb.WriteString(strings.Repeat("  ", depth))
			sb.WriteString("- ")
			walk(node{Type: "listitem-inner", Children: child.Children}, sb, depth+1)
			sb.WriteString("\n")
		}

	case "paragraph", "heading", "quote", "listitem", "listitem-inner", "code":
		for _, child := range n.Children {
			walk(child, sb, depth)
		}
		if n.Type != "listitem-inner" {
			sb.WriteString("\n")
		}

	case "horizontalrule":
		sb.WriteString("\n")

	default:
		for _, child := range n.Children {
			walk(child, sb, depth)
		}
		if len(n.Children) > 0 {
			sb.WriteString("\n")
		}
	}
}
