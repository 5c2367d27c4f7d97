package dashboard

import (
	"net/http"

	"github.com/harborline/ledgerdeck/internal/dashboard/platform/httpx"
)

// statusPayload reports the discovery state scrapers care about: whether a
// ledger id and package id have been resolved yet.
type statusPayload struct {
	Status    string `json:"status"`
	LedgerID  string `json:"ledgerId,omitempty"`
	PackageID string `json:"packageId,omitempty"`
}

// handleStatus exposes discovery state as JSON. Ids here are deployment
// metadata, not secrets; the party-scoped data stays behind the session.
func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, statusPayload{
		Status:    "ok",
		LedgerID:  h.auth.LedgerID(),
		PackageID: h.packages.Resolved(),
	})
}
