package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/text/message"

	"github.com/harborline/ledgerdeck/internal/ledger"
)

// LoginPage renders the sign-in form. Known parties become a pick list;
// the free-form field covers parties the gateway does not list.
func LoginPage(loc *message.Printer, parties []ledger.Party, errorMessage string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeAll(w,
			`<section class="login">`, "\n",
			"<h1>", templ.EscapeString(loc.Sprintf("login.heading")), "</h1>\n",
		); err != nil {
			return err
		}
		if errorMessage != "" {
			if err := writeAll(w, `<p class="error" role="alert">`, templ.EscapeString(errorMessage), "</p>\n"); err != nil {
				return err
			}
		}
		if err := writeAll(w,
			"<p>", templ.EscapeString(loc.Sprintf("login.pick_party")), "</p>\n",
			`<form method="post" action="/login">`, "\n",
		); err != nil {
			return err
		}
		if len(parties) > 0 {
			if err := writeAll(w, `<ul class="party-list">`, "\n"); err != nil {
				return err
			}
			for _, party := range parties {
				label := party.DisplayName
				if label == "" {
					label = party.Identifier
				}
				if err := writeAll(w,
					"<li><button type=\"submit\" name=\"party\" value=\"",
					templ.EscapeString(party.Identifier),
					"\">",
					templ.EscapeString(label),
					"</button></li>\n",
				); err != nil {
					return err
				}
			}
			if err := writeAll(w, "</ul>\n"); err != nil {
				return err
			}
		}
		return writeAll(w,
			`<label for="party">`, templ.EscapeString(loc.Sprintf("login.party_label")), "</label>\n",
			`<input id="party" name="party" type="text" placeholder="`,
			templ.EscapeString(loc.Sprintf("login.party_placeholder")), "\">\n",
			`<button type="submit">`, templ.EscapeString(loc.Sprintf("login.submit")), "</button>\n",
			"</form>\n",
			"</section>\n",
		)
	})
}
