package dashboard

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harborline/ledgerdeck/internal/contracts"
	"github.com/harborline/ledgerdeck/internal/ledger"
	apperrors "github.com/harborline/ledgerdeck/internal/platform/errors"
)

// redirectWithError bounces back to the dashboard carrying a localization
// key for the failed submission.
func redirectWithError(w http.ResponseWriter, r *http.Request, key string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(key), http.StatusSeeOther)
}

// actionSession validates the method and session shared by all form
// submission handlers.
func (h *handler) actionSession(w http.ResponseWriter, r *http.Request) (string, *session, bool) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return "", nil, false
	}
	sessionID, sess, ok := h.requireSession(w, r)
	if !ok {
		return "", nil, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return "", nil, false
	}
	return sessionID, sess, true
}

// sessionPackageID returns the package ID bound to the session, resolving
// it on demand when login could not.
func (h *handler) sessionPackageID(w http.ResponseWriter, r *http.Request, sessionID string, sess *session, client *ledger.Client) (string, bool) {
	if sess.packageID != "" {
		return sess.packageID, true
	}
	resolved, err := h.packages.Resolve(r.Context(), client)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnauthorized {
			h.expireSession(w, r, sessionID)
			return "", false
		}
		key := apperrors.LocalizationKey(err)
		if key == "" {
			key = "error.ledger.rejected"
		}
		redirectWithError(w, r, key)
		return "", false
	}
	h.sessions.setPackageID(sessionID, resolved)
	return resolved, true
}

func (h *handler) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	sessionID, sess, ok := h.actionSession(w, r)
	if !ok {
		return
	}
	owner := strings.TrimSpace(r.PostFormValue("owner"))
	amount := strings.TrimSpace(r.PostFormValue("amount"))
	if owner == "" {
		redirectWithError(w, r, "error.form.owner_required")
		return
	}
	if !contracts.ValidAmount(amount) {
		redirectWithError(w, r, "error.form.invalid_amount")
		return
	}

	client := h.gateway.WithToken(sess.token)
	packageID, ok := h.sessionPackageID(w, r, sessionID, sess, client)
	if !ok {
		return
	}
	payload := contracts.SimpleToken{Issuer: sess.party, Owner: owner, Amount: amount}
	start := time.Now()
	created, err := client.Create(r.Context(), contracts.TemplateID(packageID, contracts.SimpleTokenEntity), payload)
	h.observeGateway("create", start, err)
	if err != nil {
		h.submitFailure(w, r, sessionID, err)
		return
	}
	log.Printf("issued token %s for %s", created.ContractID, owner)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handler) handleReleaseEscrow(w http.ResponseWriter, r *http.Request) {
	h.exerciseChoice(w, r, contracts.EscrowEntity, contracts.EscrowReleaseChoice)
}

func (h *handler) handleUnlockLock(w http.ResponseWriter, r *http.Request) {
	h.exerciseChoice(w, r, contracts.CollateralLockEntity, contracts.CollateralLockUnlockChoice)
}

// exerciseChoice submits a no-argument choice against a contract picked on
// the dashboard.
func (h *handler) exerciseChoice(w http.ResponseWriter, r *http.Request, entity, choice string) {
	sessionID, sess, ok := h.actionSession(w, r)
	if !ok {
		return
	}
	contractID := strings.TrimSpace(r.PostFormValue("contract_id"))
	if contractID == "" {
		http.Error(w, "contract_id is required", http.StatusBadRequest)
		return
	}

	client := h.gateway.WithToken(sess.token)
	packageID, ok := h.sessionPackageID(w, r, sessionID, sess, client)
	if !ok {
		return
	}
	start := time.Now()
	_, err := client.Exercise(r.Context(), contracts.TemplateID(packageID, entity), contractID, choice, map[string]any{})
	h.observeGateway("exercise", start, err)
	if err != nil {
		h.submitFailure(w, r, sessionID, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// submitFailure maps a failed gateway submission to either a session reset
// or a dashboard redirect with the error key.
func (h *handler) submitFailure(w http.ResponseWriter, r *http.Request, sessionID string, err error) {
	if apperrors.KindOf(err) == apperrors.KindUnauthorized {
		h.expireSession(w, r, sessionID)
		return
	}
	key := apperrors.LocalizationKey(err)
	if key == "" {
		key = "error.ledger.rejected"
	}
	redirectWithError(w, r, key)
}

// handleRefresh drops the party's cached snapshots so the next render hits
// the gateway. The resolved package ID is kept; package discovery only
// reruns when resolution has never succeeded.
func (h *handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.actionSession(w, r)
	if !ok {
		return
	}
	if h.snapshots != nil {
		if err := h.snapshots.Drop(r.Context(), sess.party); err != nil {
			log.Printf("drop snapshots for %s: %v", sess.party, err)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
