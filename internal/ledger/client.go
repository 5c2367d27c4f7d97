// Package ledger wraps the fixed HTTP JSON gateway protocol exposed by the
// ledger: party listing, active-contract queries, contract creation, and
// choice exercise. The gateway itself is an external dependency; this package
// only conforms to it.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	apperrors "github.com/harborline/ledgerdeck/internal/platform/errors"
	"github.com/harborline/ledgerdeck/internal/platform/timeouts"
)

const (
	partiesPath  = "/v1/parties"
	queryPath    = "/v1/query"
	createPath   = "/v1/create"
	exercisePath = "/v1/exercise"
)

// defaultMaxTries bounds transient-failure retries per gateway call.
const defaultMaxTries = 3

// Client is a bearer-token client for the ledger JSON gateway. The zero
// value is not usable; construct with New and scope a token per session
// with WithToken.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	maxTries   uint
}

// New builds a gateway client for the given base URL. A nil httpClient
// falls back to a client with the shared gateway timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.GatewayRequest}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		maxTries:   defaultMaxTries,
	}
}

// WithToken returns a copy of the client authenticated as the token's party.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

// Parties lists the parties known to the gateway.
func (c *Client) Parties(ctx context.Context) ([]Party, error) {
	env, err := c.call(ctx, http.MethodGet, partiesPath, nil)
	if err != nil {
		return nil, err
	}
	var parties []Party
	if err := json.Unmarshal(env.Result, &parties); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "decode parties result", err)
	}
	return parties, nil
}

// Query returns the active contracts visible to the token's party for the
// given fully qualified template ids.
func (c *Client) Query(ctx context.Context, templateIDs []string) ([]ActiveContract, error) {
	if len(templateIDs) == 0 {
		return nil, apperrors.E(apperrors.KindInvalidInput, "at least one template id is required")
	}
	env, err := c.call(ctx, http.MethodPost, queryPath, queryRequest{TemplateIDs: templateIDs})
	if err != nil {
		return nil, err
	}
	var contracts []ActiveContract
	if err := json.Unmarshal(env.Result, &contracts); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "decode query result", err)
	}
	return contracts, nil
}

// Create submits a contract-creation request and returns the new contract.
func (c *Client) Create(ctx context.Context, templateID string, payload any) (*ActiveContract, error) {
	if strings.TrimSpace(templateID) == "" {
		return nil, apperrors.E(apperrors.KindInvalidInput, "template id is required")
	}
	env, err := c.call(ctx, http.MethodPost, createPath, createRequest{TemplateID: templateID, Payload: payload})
	if err != nil {
		return nil, err
	}
	var contract ActiveContract
	if err := json.Unmarshal(env.Result, &contract); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "decode create result", err)
	}
	return &contract, nil
}

// Exercise exercises a choice on an existing contract.
func (c *Client) Exercise(ctx context.Context, templateID, contractID, choice string, argument any) (*ExerciseResult, error) {
	if strings.TrimSpace(contractID) == "" {
		return nil, apperrors.E(apperrors.KindInvalidInput, "contract id is required")
	}
	if strings.TrimSpace(choice) == "" {
		return nil, apperrors.E(apperrors.KindInvalidInput, "choice is required")
	}
	if argument == nil {
		argument = map[string]any{}
	}
	env, err := c.call(ctx, http.MethodPost, exercisePath, exerciseRequest{
		TemplateID: templateID,
		ContractID: contractID,
		Choice:     choice,
		Argument:   argument,
	})
	if err != nil {
		return nil, err
	}
	var result ExerciseResult
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "decode exercise result", err)
	}
	return &result, nil
}

// call performs one gateway round trip with bounded retries on transient
// failures. Gateway rejections (4xx) are permanent and mapped to typed
// errors; connection failures and 5xx responses are retried.
func (c *Client) call(ctx context.Context, method, path string, body any) (*envelope, error) {
	operation := func() (*envelope, error) {
		env, err := c.roundTrip(ctx, method, path, body)
		if err == nil {
			return env, nil
		}
		if apperrors.KindOf(err) == apperrors.KindUnavailable {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 100 * time.Millisecond
	env, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(c.maxTries),
	)
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "gateway unreachable", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, apperrors.E(apperrors.KindUnavailable, "gateway returned "+resp.Status)
		}
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "decode gateway response", err)
	}
	if env.Status == 0 {
		env.Status = resp.StatusCode
	}
	if err := statusError(env); err != nil {
		return nil, err
	}
	return &env, nil
}

// statusError maps a gateway error envelope to a typed error.
func statusError(env envelope) error {
	if env.Status >= 200 && env.Status < 300 {
		return nil
	}
	message := strings.Join(env.Errors, "; ")
	if message == "" {
		message = fmt.Sprintf("gateway status %d", env.Status)
	}
	switch {
	case env.Status == http.StatusUnauthorized || env.Status == http.StatusForbidden:
		return apperrors.EK(apperrors.KindUnauthorized, "error.ledger.unauthorized", message)
	case env.Status == http.StatusNotFound:
		return apperrors.EK(apperrors.KindNotFound, "error.ledger.not_found", message)
	case env.Status >= http.StatusInternalServerError:
		return apperrors.EK(apperrors.KindUnavailable, "error.ledger.unavailable", message)
	default:
		return apperrors.EK(apperrors.KindInvalidInput, "error.ledger.rejected", message)
	}
}
