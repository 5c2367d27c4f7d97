package templates

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/message"

	"github.com/harborline/ledgerdeck/internal/contracts"
)

// TokenRow is one SimpleToken contract prepared for rendering.
type TokenRow struct {
	ContractID string
	Token      contracts.SimpleToken
}

// EscrowRow is one Escrow contract prepared for rendering. Releasable is
// set when the signed-in party is the escrow agent.
type EscrowRow struct {
	ContractID string
	Escrow     contracts.Escrow
	Releasable bool
}

// LockRow is one CollateralLock contract prepared for rendering.
// Unlockable is set when the signed-in party is the custodian.
type LockRow struct {
	ContractID string
	Lock       contracts.CollateralLock
	Unlockable bool
}

// SectionState carries staleness info shared by all three sections.
type SectionState struct {
	Stale     bool
	FetchedAt time.Time
}

// DashboardView is everything the dashboard page needs.
type DashboardView struct {
	Party        string
	Tokens       []TokenRow
	TokensState  SectionState
	Escrows      []EscrowRow
	EscrowsState SectionState
	Locks        []LockRow
	LocksState   SectionState
	FormError    string
	Notice       string
}

// DashboardPage renders the three contract sections plus the issue form.
func DashboardPage(loc *message.Printer, view DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeAll(w,
			`<header class="topbar">`, "\n",
			"<h1>", templ.EscapeString(loc.Sprintf("dashboard.heading")), "</h1>\n",
			`<div class="identity">`,
			templ.EscapeString(loc.Sprintf("dashboard.signed_in_as")), " <strong>",
			templ.EscapeString(view.Party), "</strong>\n",
			`<form method="post" action="/refresh" class="inline"><button type="submit">`,
			templ.EscapeString(loc.Sprintf("dashboard.refresh")), "</button></form>\n",
			`<form method="post" action="/logout" class="inline"><button type="submit">`,
			templ.EscapeString(loc.Sprintf("dashboard.sign_out")), "</button></form>\n",
			"</div>\n</header>\n",
		); err != nil {
			return err
		}
		if view.Notice != "" {
			if err := writeAll(w, `<p class="notice">`, templ.EscapeString(view.Notice), "</p>\n"); err != nil {
				return err
			}
		}
		if view.FormError != "" {
			if err := writeAll(w, `<p class="error" role="alert">`, templ.EscapeString(view.FormError), "</p>\n"); err != nil {
				return err
			}
		}
		if err := renderTokens(ctx, w, loc, view); err != nil {
			return err
		}
		if err := renderEscrows(ctx, w, loc, view); err != nil {
			return err
		}
		if err := renderLocks(ctx, w, loc, view); err != nil {
			return err
		}
		return renderIssueForm(w, loc)
	})
}

func sectionOpen(w io.Writer, loc *message.Printer, headingKey string, state SectionState) error {
	if err := writeAll(w, `<section class="contracts">`, "\n<h2>", templ.EscapeString(loc.Sprintf(headingKey)), "</h2>\n"); err != nil {
		return err
	}
	if state.Stale {
		if err := writeAll(w,
			`<p class="stale">`, templ.EscapeString(loc.Sprintf("dashboard.stale_notice")),
			" (", templ.EscapeString(state.FetchedAt.Format(time.RFC3339)), ")</p>\n",
		); err != nil {
			return err
		}
	}
	return nil
}

func sectionEmpty(w io.Writer, loc *message.Printer) error {
	return writeAll(w, `<p class="empty">`, templ.EscapeString(loc.Sprintf("dashboard.empty_section")), "</p>\n</section>\n")
}

func renderTokens(_ context.Context, w io.Writer, loc *message.Printer, view DashboardView) error {
	if err := sectionOpen(w, loc, "dashboard.tokens_heading", view.TokensState); err != nil {
		return err
	}
	if len(view.Tokens) == 0 {
		return sectionEmpty(w, loc)
	}
	if err := writeAll(w, "<table>\n<thead><tr><th>Issuer</th><th>Owner</th><th>Amount</th></tr></thead>\n<tbody>\n"); err != nil {
		return err
	}
	for _, row := range view.Tokens {
		if err := writeAll(w,
			"<tr><td>", templ.EscapeString(row.Token.Issuer),
			"</td><td>", templ.EscapeString(row.Token.Owner),
			"</td><td>", templ.EscapeString(row.Token.Amount),
			"</td></tr>\n",
		); err != nil {
			return err
		}
	}
	return writeAll(w, "</tbody>\n</table>\n</section>\n")
}

func renderEscrows(_ context.Context, w io.Writer, loc *message.Printer, view DashboardView) error {
	if err := sectionOpen(w, loc, "dashboard.escrows_heading", view.EscrowsState); err != nil {
		return err
	}
	if len(view.Escrows) == 0 {
		return sectionEmpty(w, loc)
	}
	if err := writeAll(w, "<table>\n<thead><tr><th>Buyer</th><th>Seller</th><th>Agent</th><th>Amount</th><th>Description</th><th></th></tr></thead>\n<tbody>\n"); err != nil {
		return err
	}
	for _, row := range view.Escrows {
		if err := writeAll(w,
			"<tr><td>", templ.EscapeString(row.Escrow.Buyer),
			"</td><td>", templ.EscapeString(row.Escrow.Seller),
			"</td><td>", templ.EscapeString(row.Escrow.EscrowAgent),
			"</td><td>", templ.EscapeString(row.Escrow.Amount),
			"</td><td>", templ.EscapeString(row.Escrow.Description),
			"</td><td>",
		); err != nil {
			return err
		}
		if row.Releasable {
			if err := writeAll(w,
				`<form method="post" action="/escrows/release"><input type="hidden" name="contract_id" value="`,
				templ.EscapeString(row.ContractID),
				`"><button type="submit">`,
				templ.EscapeString(loc.Sprintf("dashboard.release")),
				"</button></form>",
			); err != nil {
				return err
			}
		}
		if err := writeAll(w, "</td></tr>\n"); err != nil {
			return err
		}
	}
	return writeAll(w, "</tbody>\n</table>\n</section>\n")
}

func renderLocks(_ context.Context, w io.Writer, loc *message.Printer, view DashboardView) error {
	if err := sectionOpen(w, loc, "dashboard.locks_heading", view.LocksState); err != nil {
		return err
	}
	if len(view.Locks) == 0 {
		return sectionEmpty(w, loc)
	}
	if err := writeAll(w, "<table>\n<thead><tr><th>Owner</th><th>Custodian</th><th>Amount</th><th>Locked Until</th><th></th></tr></thead>\n<tbody>\n"); err != nil {
		return err
	}
	for _, row := range view.Locks {
		if err := writeAll(w,
			"<tr><td>", templ.EscapeString(row.Lock.Owner),
			"</td><td>", templ.EscapeString(row.Lock.Custodian),
			"</td><td>", templ.EscapeString(row.Lock.Amount),
			"</td><td>", templ.EscapeString(row.Lock.LockedUntil),
			"</td><td>",
		); err != nil {
			return err
		}
		if row.Unlockable {
			if err := writeAll(w,
				`<form method="post" action="/locks/unlock"><input type="hidden" name="contract_id" value="`,
				templ.EscapeString(row.ContractID),
				`"><button type="submit">`,
				templ.EscapeString(loc.Sprintf("dashboard.unlock")),
				"</button></form>",
			); err != nil {
				return err
			}
		}
		if err := writeAll(w, "</td></tr>\n"); err != nil {
			return err
		}
	}
	return writeAll(w, "</tbody>\n</table>\n</section>\n")
}

func renderIssueForm(w io.Writer, loc *message.Printer) error {
	return writeAll(w,
		`<section class="issue">`, "\n",
		"<h2>", templ.EscapeString(loc.Sprintf("dashboard.issue_heading")), "</h2>\n",
		`<form method="post" action="/tokens/issue">`, "\n",
		`<label for="owner">`, templ.EscapeString(loc.Sprintf("dashboard.issue_owner")), "</label>\n",
		`<input id="owner" name="owner" type="text" required>`, "\n",
		`<label for="amount">`, templ.EscapeString(loc.Sprintf("dashboard.issue_amount")), "</label>\n",
		`<input id="amount" name="amount" type="text" inputmode="decimal" required>`, "\n",
		`<button type="submit">`, templ.EscapeString(loc.Sprintf("dashboard.issue_submit")), "</button>\n",
		"</form>\n",
		"</section>\n",
	)
}
