package dashboard

import (
	"log"
	"net/http"
	"strings"

	"github.com/harborline/ledgerdeck/internal/dashboard/templates"
	"github.com/harborline/ledgerdeck/internal/ledger"
	apperrors "github.com/harborline/ledgerdeck/internal/platform/errors"
)

// probeParty is the placeholder identity used to mint a read-only token for
// listing parties on the login page. The gateway validates the token shape,
// not the party's existence.
const probeParty = "ledgerdeck-reader"

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.renderLogin(w, r, http.StatusOK, "")
	case http.MethodPost:
		h.submitLogin(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

func (h *handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, errorKey string) {
	loc, lang := localizer(w, r)
	if _, sess := sessionFromRequest(r, h.sessions); sess != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	var errorText string
	if errorKey != "" {
		errorText = loc.Sprintf(errorKey)
	}
	parties := h.knownParties(r)
	writePage(w, r, "Sign In", lang, status, templates.LoginPage(loc, parties, errorText))
}

// knownParties lists gateway parties for the pick list. Best effort: before
// the first successful login no ledger ID is known and the list is empty.
func (h *handler) knownParties(r *http.Request) []ledger.Party {
	ledgerID := h.auth.LedgerID()
	if ledgerID == "" {
		return nil
	}
	token, _, err := ledger.MintToken(ledger.TokenConfig{
		Secret:        h.config.TokenSecret,
		ApplicationID: h.config.ApplicationID,
	}, ledgerID, probeParty)
	if err != nil {
		return nil
	}
	parties, err := h.gateway.WithToken(token).Parties(r.Context())
	if err != nil {
		return nil
	}
	return parties
}

func (h *handler) submitLogin(w http.ResponseWriter, r *http.Request) {
	if !h.loginLimit.Allow(r) {
		http.Error(w, "too many login attempts", http.StatusTooManyRequests)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	party := strings.TrimSpace(r.PostFormValue("party"))
	if party == "" {
		h.renderLogin(w, r, http.StatusBadRequest, "error.login.party_required")
		return
	}

	creds, err := h.auth.Login(r.Context(), party)
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindUnauthorized:
			h.renderLogin(w, r, http.StatusUnauthorized, "error.login.rejected")
		case apperrors.KindUnavailable:
			h.renderLogin(w, r, apperrors.HTTPStatus(err), "error.ledger.unavailable")
		default:
			h.renderLogin(w, r, apperrors.HTTPStatus(err), "error.login.rejected")
		}
		return
	}

	// Package resolution is best effort here; the dashboard retries on
	// first render when it is still unresolved.
	packageID := h.packages.Resolved()
	if packageID == "" {
		resolved, err := h.packages.Resolve(r.Context(), h.gateway.WithToken(creds.Token))
		if err != nil {
			log.Printf("package resolution deferred: %v", err)
		} else {
			packageID = resolved
		}
	}

	sessionID := h.sessions.create(creds, packageID)
	setSessionCookie(w, sessionID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if id, _ := sessionFromRequest(r, h.sessions); id != "" {
		h.sessions.delete(id)
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// requireSession resolves the request session or redirects to the login
// page. The bool reports whether the caller may proceed.
func (h *handler) requireSession(w http.ResponseWriter, r *http.Request) (string, *session, bool) {
	id, sess := sessionFromRequest(r, h.sessions)
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return "", nil, false
	}
	return id, sess, true
}

// expireSession drops a session whose token the gateway no longer accepts.
func (h *handler) expireSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	h.sessions.delete(sessionID)
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
