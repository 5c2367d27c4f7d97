package dashboard

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/message"

	"github.com/harborline/ledgerdeck/internal/contracts"
	"github.com/harborline/ledgerdeck/internal/dashboard/templates"
	"github.com/harborline/ledgerdeck/internal/ledger"
	apperrors "github.com/harborline/ledgerdeck/internal/platform/errors"
)

// sectionResult carries one fetched contract section. Unauthorized is
// surfaced separately because it invalidates the whole session rather
// than a single section.
type sectionResult struct {
	contracts    []ledger.ActiveContract
	state        templates.SectionState
	unauthorized bool
}

func (h *handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	sessionID, sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	loc, lang := localizer(w, r)
	client := h.gateway.WithToken(sess.token)

	packageID := sess.packageID
	if packageID == "" {
		resolved, err := h.packages.Resolve(r.Context(), client)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindUnauthorized {
				h.expireSession(w, r, sessionID)
				return
			}
			renderErrorPage(w, r, loc, lang, err)
			return
		}
		packageID = resolved
		h.sessions.setPackageID(sessionID, packageID)
	}

	var tokens, escrows, locks sectionResult
	group, ctx := errgroup.WithContext(r.Context())
	group.Go(func() error {
		tokens = h.fetchSection(ctx, client, sess.party, contracts.TemplateID(packageID, contracts.SimpleTokenEntity))
		return nil
	})
	group.Go(func() error {
		escrows = h.fetchSection(ctx, client, sess.party, contracts.TemplateID(packageID, contracts.EscrowEntity))
		return nil
	})
	group.Go(func() error {
		locks = h.fetchSection(ctx, client, sess.party, contracts.TemplateID(packageID, contracts.CollateralLockEntity))
		return nil
	})
	_ = group.Wait()

	if tokens.unauthorized || escrows.unauthorized || locks.unauthorized {
		h.expireSession(w, r, sessionID)
		return
	}

	view := templates.DashboardView{
		Party:        sess.party,
		Tokens:       tokenRows(tokens.contracts),
		TokensState:  tokens.state,
		Escrows:      escrowRows(escrows.contracts, sess.party),
		EscrowsState: escrows.state,
		Locks:        lockRows(locks.contracts, sess.party),
		LocksState:   locks.state,
		FormError:    formErrorFromQuery(r, loc),
	}
	writePage(w, r, "Dashboard", lang, http.StatusOK, templates.DashboardPage(loc, view))
}

// fetchSection queries one template's active contracts. On gateway failure
// it falls back to the last cached snapshot and marks the section stale;
// with no snapshot the section renders empty.
func (h *handler) fetchSection(ctx context.Context, client *ledger.Client, party, templateID string) sectionResult {
	start := time.Now()
	fetched, err := client.Query(ctx, []string{templateID})
	h.observeGateway("query", start, err)
	if err == nil {
		if h.snapshots != nil {
			if saveErr := h.snapshots.Save(ctx, party, templateID, fetched); saveErr != nil {
				log.Printf("save snapshot for %s: %v", templateID, saveErr)
			}
		}
		return sectionResult{contracts: fetched}
	}
	if apperrors.KindOf(err) == apperrors.KindUnauthorized {
		return sectionResult{unauthorized: true}
	}
	log.Printf("query %s: %v", templateID, err)
	if h.snapshots != nil {
		snap, ok, loadErr := h.snapshots.Load(ctx, party, templateID)
		if loadErr != nil {
			log.Printf("load snapshot for %s: %v", templateID, loadErr)
		} else if ok {
			h.metrics.ObserveCacheServe()
			return sectionResult{
				contracts: snap.Contracts,
				state:     templates.SectionState{Stale: true, FetchedAt: snap.FetchedAt},
			}
		}
	}
	return sectionResult{}
}

func (h *handler) observeGateway(endpoint string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.KindOf(err))
	}
	h.metrics.ObserveGatewayCall(endpoint, outcome, time.Since(start))
}

// formErrorFromQuery localizes an error key carried back from a failed
// form submission. Only known error keys render; anything else is dropped.
func formErrorFromQuery(r *http.Request, loc *message.Printer) string {
	key := strings.TrimSpace(r.URL.Query().Get("error"))
	if key == "" || !strings.HasPrefix(key, "error.") {
		return ""
	}
	return loc.Sprintf(key)
}

func tokenRows(active []ledger.ActiveContract) []templates.TokenRow {
	rows := make([]templates.TokenRow, 0, len(active))
	for _, contract := range active {
		token, err := contracts.DecodeSimpleToken(contract.Payload)
		if err != nil {
			log.Printf("skip malformed token %s: %v", contract.ContractID, err)
			continue
		}
		rows = append(rows, templates.TokenRow{ContractID: contract.ContractID, Token: token})
	}
	return rows
}

func escrowRows(active []ledger.ActiveContract, party string) []templates.EscrowRow {
	rows := make([]templates.EscrowRow, 0, len(active))
	for _, contract := range active {
		escrow, err := contracts.DecodeEscrow(contract.Payload)
		if err != nil {
			log.Printf("skip malformed escrow %s: %v", contract.ContractID, err)
			continue
		}
		rows = append(rows, templates.EscrowRow{
			ContractID: contract.ContractID,
			Escrow:     escrow,
			Releasable: escrow.EscrowAgent == party,
		})
	}
	return rows
}

func lockRows(active []ledger.ActiveContract, party string) []templates.LockRow {
	rows := make([]templates.LockRow, 0, len(active))
	for _, contract := range active {
		lock, err := contracts.DecodeCollateralLock(contract.Payload)
		if err != nil {
			log.Printf("skip malformed lock %s: %v", contract.ContractID, err)
			continue
		}
		rows = append(rows, templates.LockRow{
			ContractID: contract.ContractID,
			Lock:       lock,
			Unlockable: lock.Custodian == party,
		})
	}
	return rows
}
