// Package templates renders the dashboard HTML pages.
package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// AppName is the branding shown in page titles and the header.
const AppName = "LedgerDeck"

// ComposePageTitle appends the app name suffix unless already present.
func ComposePageTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return AppName
	}
	if strings.HasSuffix(title, "| "+AppName) {
		return title
	}
	return title + " | " + AppName
}

// Layout wraps a body component in the shared HTML chrome.
func Layout(title, lang string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeAll(w,
			"<!doctype html>\n",
			`<html lang="`, templ.EscapeString(lang), "\">\n",
			"<head>\n",
			`<meta charset="utf-8">`, "\n",
			`<meta name="viewport" content="width=device-width, initial-scale=1">`, "\n",
			"<title>", templ.EscapeString(ComposePageTitle(title)), "</title>\n",
			`<link rel="stylesheet" href="/static/app.css">`, "\n",
			"</head>\n",
			"<body>\n",
			`<main class="container">`, "\n",
		); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		return writeAll(w, "</main>\n</body>\n</html>\n")
	})
}

func writeAll(w io.Writer, parts ...string) error {
	for _, part := range parts {
		if _, err := io.WriteString(w, part); err != nil {
			return err
		}
	}
	return nil
}
