package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/harborline/ledgerdeck/internal/platform/errors"
	"github.com/harborline/ledgerdeck/internal/platform/timeouts"
)

// ledgerClaimsKey is the namespaced claims block the gateway inspects.
const ledgerClaimsKey = "https://daml.com/ledger-api"

// defaultTokenTTL applies when no TTL is configured. The session layer
// honors the token's exp claim, so this value also bounds session lifetime.
const defaultTokenTTL = 8 * time.Hour

// TokenConfig describes how session tokens are minted. The gateway accepts
// HS256 tokens signed with a shared secret; the ledger id inside the claims
// must match the running ledger, which is why LedgerIDs is a candidate list
// rather than a single value.
type TokenConfig struct {
	Secret        string
	ApplicationID string
	LedgerIDs     []string
	TTL           time.Duration
	Now           func() time.Time
}

// Credentials is the outcome of a successful login against the gateway.
type Credentials struct {
	Token     string
	Party     string
	LedgerID  string
	ExpiresAt time.Time
}

// MintToken signs a gateway token acting as the given party on the given
// ledger id.
func MintToken(cfg TokenConfig, ledgerID, party string) (string, time.Time, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return "", time.Time{}, apperrors.E(apperrors.KindInvalidInput, "token secret is required")
	}
	if strings.TrimSpace(ledgerID) == "" {
		return "", time.Time{}, apperrors.E(apperrors.KindInvalidInput, "ledger id is required")
	}
	if strings.TrimSpace(party) == "" {
		return "", time.Time{}, apperrors.E(apperrors.KindInvalidInput, "party is required")
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	applicationID := strings.TrimSpace(cfg.ApplicationID)
	if applicationID == "" {
		applicationID = "ledgerdeck"
	}
	expiresAt := now().Add(ttl)

	claims := jwt.MapClaims{
		ledgerClaimsKey: map[string]any{
			"ledgerId":      ledgerID,
			"applicationId": applicationID,
			"actAs":         []string{party},
		},
		"exp": jwt.NewNumericDate(expiresAt),
		"iat": jwt.NewNumericDate(now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Authenticator mints tokens by guessing the ledger id: each candidate is
// tried against the party listing until the gateway accepts one. The
// accepted id is cached for the process lifetime.
type Authenticator struct {
	client *Client
	config TokenConfig

	mu       sync.Mutex
	ledgerID string
}

// NewAuthenticator builds an authenticator over the given gateway client.
func NewAuthenticator(client *Client, config TokenConfig) *Authenticator {
	return &Authenticator{client: client, config: config}
}

// Login mints credentials for the party, discovering the ledger id on the
// first call. A gateway that rejects every candidate yields an unauthorized
// error; an unreachable gateway aborts the scan immediately.
func (a *Authenticator) Login(ctx context.Context, party string) (Credentials, error) {
	party = strings.TrimSpace(party)
	if party == "" {
		return Credentials{}, apperrors.EK(apperrors.KindInvalidInput, "error.login.party_required", "party is required")
	}

	a.mu.Lock()
	cached := a.ledgerID
	a.mu.Unlock()

	candidates := a.config.LedgerIDs
	if cached != "" {
		candidates = []string{cached}
	}
	if len(candidates) == 0 {
		return Credentials{}, apperrors.E(apperrors.KindInvalidInput, "no candidate ledger ids configured")
	}

	var lastErr error
	for _, candidate := range candidates {
		token, expiresAt, err := MintToken(a.config, candidate, party)
		if err != nil {
			return Credentials{}, err
		}
		probeCtx, cancel := context.WithTimeout(ctx, timeouts.GatewayProbe)
		_, err = a.client.WithToken(token).Parties(probeCtx)
		cancel()
		if err == nil {
			a.mu.Lock()
			a.ledgerID = candidate
			a.mu.Unlock()
			return Credentials{Token: token, Party: party, LedgerID: candidate, ExpiresAt: expiresAt}, nil
		}
		if apperrors.KindOf(err) != apperrors.KindUnauthorized {
			return Credentials{}, err
		}
		lastErr = err
	}
	return Credentials{}, apperrors.Wrap(apperrors.KindUnauthorized, "no candidate ledger id was accepted", lastErr)
}

// LedgerID returns the discovered ledger id, or empty before the first
// successful login.
func (a *Authenticator) LedgerID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledgerID
}
