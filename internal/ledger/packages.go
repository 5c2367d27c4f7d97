package ledger

import (
	"context"
	"strings"
	"sync"

	apperrors "github.com/harborline/ledgerdeck/internal/platform/errors"
	"github.com/harborline/ledgerdeck/internal/platform/timeouts"
)

// PackageResolver discovers which uploaded archive holds the dashboard's
// templates. Template names must be fully qualified with a package id, but
// the id changes on every archive upload, so the resolver probes a query
// against each candidate until the gateway recognizes one.
//
// A resolved id is cached and never re-probed unless Invalidate is called;
// manual dashboard refreshes deliberately keep the cached id.
type PackageResolver struct {
	probeTemplate string

	mu         sync.Mutex
	candidates []string
	resolved   string
}

// NewPackageResolver builds a resolver over the candidate package ids.
// probeTemplate is the module-qualified template name used for probing,
// e.g. "Main:SimpleToken".
func NewPackageResolver(candidates []string, probeTemplate string) *PackageResolver {
	cleaned := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return &PackageResolver{
		candidates:    cleaned,
		probeTemplate: strings.TrimSpace(probeTemplate),
	}
}

// Resolve returns the package id whose probe query the gateway accepts.
// The client must already carry a valid token. Unauthorized responses
// abort the scan: a bad token would otherwise burn the whole candidate
// list and report a misleading not-found.
func (r *PackageResolver) Resolve(ctx context.Context, client *Client) (string, error) {
	r.mu.Lock()
	if r.resolved != "" {
		resolved := r.resolved
		r.mu.Unlock()
		return resolved, nil
	}
	candidates := make([]string, len(r.candidates))
	copy(candidates, r.candidates)
	r.mu.Unlock()

	if len(candidates) == 0 {
		return "", apperrors.EK(apperrors.KindNotFound, "error.ledger.package_not_found", "no candidate package ids configured")
	}

	var lastErr error
	for _, candidate := range candidates {
		probeCtx, cancel := context.WithTimeout(ctx, timeouts.GatewayProbe)
		_, err := client.Query(probeCtx, []string{candidate + ":" + r.probeTemplate})
		cancel()
		if err == nil {
			r.mu.Lock()
			r.resolved = candidate
			r.mu.Unlock()
			return candidate, nil
		}
		switch apperrors.KindOf(err) {
		case apperrors.KindUnauthorized, apperrors.KindUnavailable:
			return "", err
		}
		lastErr = err
	}
	return "", apperrors.Wrap(apperrors.KindNotFound, "no candidate package id matched", lastErr)
}

// Resolved returns the cached package id, or empty before resolution.
func (r *PackageResolver) Resolved() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}

// Invalidate drops the cached package id so the next Resolve re-probes.
func (r *PackageResolver) Invalidate() {
	r.mu.Lock()
	r.resolved = ""
	r.mu.Unlock()
}

// AddCandidates appends extra candidate ids, keeping existing order first.
func (r *PackageResolver) AddCandidates(extra ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, candidate := range extra {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "" {
			continue
		}
		seen := false
		for _, existing := range r.candidates {
			if existing == trimmed {
				seen = true
				break
			}
		}
		if !seen {
			r.candidates = append(r.candidates, trimmed)
		}
	}
}
