// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Node2string appends the trimmed text of n and its descendants to sb,
// separating text nodes with a single space.
func Node2string(n *html.Node, sb *strings.Builder) (err error) {
	if n.Type == html.TextNode {
		tmp := strings.Join(strings.Fields(n.Data), " ")

		// a REPLACEMENT CHARACTER (U+FFFD) means the document was
		// decoded with the wrong charset
		if strings.ContainsRune(tmp, utf8.RuneError) {
			return fmt.Errorf("charset missmatch found: `%s'", tmp)
		}

		if len(tmp) > 0 {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(tmp)
		}
	} else {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			err = Node2string(child, sb)
			if err != nil {
				break
			}
		}
	}

	return err
}

// Text returns the text content of n, ignoring charset problems.
func Text(n *html.Node) string {
	sb := strings.Builder{}
	_ = Node2string(n, &sb)

	return sb.String()
}

// Validates that response seems to be an HTML response.
func hasHTMLContentType(media string) bool {
	const expectedMedia = "text/html"

	return strings.EqualFold(
		expectedMedia,
		media[0:min(len(media), len(expectedMedia))],
	)
}

// AsReader converts an HTTP response body to an io.Reader with the correct charset.
func AsReader(resp *http.Response) (io.Reader, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	media := resp.Header.Get("Content-Type")
	if !hasHTMLContentType(media) {
		return nil, fmt.Errorf("media type is %s", media)
	}

	rr, err := charset.NewReader(resp.Body, media)
	if err != nil {
		return nil, err
	}

	return rr, nil
}

// AsNode parses an io.Reader as an HTML node.
func AsNode(r io.Reader) (*html.Node, error) {
	n, err := html.Parse(r)
	if nil != err {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return n, nil
}

// Attr returns the value of the attribute key of n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}

	return "", false
}

// HasClass reports whether n lists class in its class attribute.
func HasClass(n *html.Node, class string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}

	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}

	return false
}

// FindAll returns every element below n, in document order, for which match
// returns true.
func FindAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node

	for d := range n.Descendants() {
		if d.Type == html.ElementNode && match(d) {
			out = append(out, d)
		}
	}

	return out
}

// ByClass returns the elements below n carrying class.
func ByClass(n *html.Node, class string) []*html.Node {
	return FindAll(n, func(e *html.Node) bool { return HasClass(e, class) })
}

// ByTag returns the elements below n with the given tag name.
func ByTag(n *html.Node, tag string) []*html.Node {
	return FindAll(n, func(e *html.Node) bool { return strings.EqualFold(e.Data, tag) })
}

// ByID returns the element below n with the given id, or nil.
func ByID(n *html.Node, id string) *html.Node {
	found := FindAll(n, func(e *html.Node) bool {
		v, ok := Attr(e, "id")

		return ok && v == id
	})
	if len(found) == 0 {
		return nil
	}

	return found[0]
}
