package reference

import (
	"net/url"
	"path/filepath"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// fileURL is the base used to resolve relative links in saved pages.
var fileURL = &url.URL{Scheme: "file", Path: "/"}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}

// readableText reduces a saved page, such as an exported resume, to its main
// text. The title is kept as the first line when the body does not repeat it.
func readableText(markup string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(markup), fileURL)
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(article.Title)
	body := strings.TrimSpace(article.TextContent)
	if title == "" || strings.HasPrefix(body, title) {
		return body, nil
	}
	return title + "\n\n" + body, nil
}
