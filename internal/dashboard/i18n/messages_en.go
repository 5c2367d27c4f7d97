package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.AmericanEnglish

	// Login page
	message.SetString(lang, "login.heading", "Sign in to the ledger")
	message.SetString(lang, "login.party_label", "Party")
	message.SetString(lang, "login.party_placeholder", "e.g. Alice::1220ab...")
	message.SetString(lang, "login.submit", "Sign In")
	message.SetString(lang, "login.pick_party", "Pick your party, or paste a party identifier.")

	// Dashboard page
	message.SetString(lang, "dashboard.heading", "Ledger Dashboard")
	message.SetString(lang, "dashboard.signed_in_as", "Signed in as")
	message.SetString(lang, "dashboard.sign_out", "Sign out")
	message.SetString(lang, "dashboard.refresh", "Refresh")
	message.SetString(lang, "dashboard.stale_notice", "Showing a cached snapshot; the ledger gateway could not be reached.")
	message.SetString(lang, "dashboard.tokens_heading", "Tokens")
	message.SetString(lang, "dashboard.escrows_heading", "Escrows")
	message.SetString(lang, "dashboard.locks_heading", "Collateral Locks")
	message.SetString(lang, "dashboard.empty_section", "No contracts visible.")
	message.SetString(lang, "dashboard.issue_heading", "Issue Token")
	message.SetString(lang, "dashboard.issue_owner", "Owner party")
	message.SetString(lang, "dashboard.issue_amount", "Amount")
	message.SetString(lang, "dashboard.issue_submit", "Issue")
	message.SetString(lang, "dashboard.release", "Release")
	message.SetString(lang, "dashboard.unlock", "Unlock")

	// Errors surfaced to the browser
	message.SetString(lang, "error.login.party_required", "A party identifier is required.")
	message.SetString(lang, "error.login.rejected", "The ledger gateway rejected this party.")
	message.SetString(lang, "error.ledger.unauthorized", "Your session is no longer accepted by the ledger.")
	message.SetString(lang, "error.ledger.unavailable", "The ledger gateway is unreachable.")
	message.SetString(lang, "error.ledger.not_found", "The contract package could not be located on the ledger.")
	message.SetString(lang, "error.ledger.rejected", "The ledger gateway rejected the request.")
	message.SetString(lang, "error.ledger.package_not_found", "No uploaded package matched the configured candidates.")
	message.SetString(lang, "error.form.invalid_amount", "Amount must be a decimal number.")
	message.SetString(lang, "error.form.owner_required", "An owner party is required.")
	message.SetString(lang, "error.http.method_not_allowed", "Method not allowed.")

	// Error page
	message.SetString(lang, "error.page.back", "Back to dashboard")
}
