package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/text/message"
)

// ErrorPage renders a standalone error page with a link back home.
func ErrorPage(loc *message.Printer, errorMessage string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return writeAll(w,
			`<section class="error-page">`, "\n",
			"<h1>", templ.EscapeString(errorMessage), "</h1>\n",
			`<p><a href="/">`, templ.EscapeString(loc.Sprintf("error.page.back")), "</a></p>\n",
			"</section>\n",
		)
	})
}
