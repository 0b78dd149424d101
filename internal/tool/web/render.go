package web

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "head": true,
	"template": true, "svg": true, "iframe": true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "pre": true,
	"section": true, "article": true, "header": true, "footer": true, "nav": true,
	"ul": true, "ol": true, "table": true, "blockquote": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// renderHTML extracts the visible text of a document. With markdown set, headings,
// list items, links and inline code keep a light markdown shape.
func renderHTML(r io.Reader, markdown bool) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if text := collapseSpace(n.Data); text != "" {
				b.WriteString(text)
			}
			return
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
		}

		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			b.WriteByte('\n')
		}

		suffix := ""
		if markdown && n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteString(strings.Repeat("#", int(n.Data[1]-'0')) + " ")
			case "li":
				b.WriteString("- ")
			case "code":
				if n.Parent == nil || n.Parent.Data != "pre" {
					b.WriteByte('`')
					suffix = "`"
				}
			case "pre":
				b.WriteString("```\n")
				suffix = "\n```"
			case "a":
				if href := attr(n, "href"); href != "" {
					b.WriteByte('[')
					suffix = "](" + href + ")"
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		b.WriteString(suffix)
		if block {
			b.WriteByte('\n')
		}
	}
	walk(doc)

	return tidyLines(b.String()), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// collapseSpace folds whitespace runs into single spaces, keeping one leading and trailing space
// so adjacent inline nodes stay separated.
func collapseSpace(s string) string {
	if strings.TrimSpace(s) == "" {
		if s != "" {
			return " "
		}
		return ""
	}
	fields := strings.Fields(s)
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r' || c == '\f'
}

// tidyLines trims every line and drops the empty ones.
func tidyLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
