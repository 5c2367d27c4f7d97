package dashboard

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/message"

	"github.com/harborline/ledgerdeck/internal/dashboard/templates"
	apperrors "github.com/harborline/ledgerdeck/internal/platform/errors"
)

// errorMessage localizes an error via its attached key, falling back to a
// generic rejection message.
func errorMessage(loc *message.Printer, err error) string {
	key := apperrors.LocalizationKey(err)
	if key == "" {
		key = "error.ledger.rejected"
	}
	return loc.Sprintf(key)
}

// writePage renders a body component inside the layout, buffered so a
// non-200 status can be set before any bytes go out.
func writePage(w http.ResponseWriter, r *http.Request, title, lang string, status int, body templ.Component) {
	var rendered strings.Builder
	if err := templates.Layout(title, lang, body).Render(r.Context(), &rendered); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(rendered.String()))
}

// renderErrorPage writes a standalone error page for err with the status
// derived from its kind.
func renderErrorPage(w http.ResponseWriter, r *http.Request, loc *message.Printer, lang string, err error) {
	writePage(w, r, "Error", lang, apperrors.HTTPStatus(err), templates.ErrorPage(loc, errorMessage(loc, err)))
}

// methodNotAllowed rejects a request with the allowed methods advertised
// and a localized body.
func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	loc, _ := localizer(w, r)
	w.Header().Set("Allow", allow)
	http.Error(w, loc.Sprintf("error.http.method_not_allowed"), http.StatusMethodNotAllowed)
}
