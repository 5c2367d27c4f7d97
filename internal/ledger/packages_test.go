package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/harborline/ledgerdeck/internal/platform/errors"
)

// fakePackageGateway accepts queries only for templates under wantPackageID.
func fakePackageGateway(t *testing.T, wantPackageID string, probes *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode query body: %v", err)
		}
		if len(req.TemplateIDs) != 1 {
			t.Fatalf("template ids = %v, want exactly one probe", req.TemplateIDs)
		}
		if probes != nil {
			*probes = append(*probes, req.TemplateIDs[0])
		}
		if req.TemplateIDs[0] != wantPackageID+":Main:SimpleToken" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": 400, "errors": []string{"unknown template"}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": 200, "result": []any{}})
	}))
}

func TestResolveProbesCandidatesInOrder(t *testing.T) {
	var probes []string
	gateway := fakePackageGateway(t, "pkg-2", &probes)
	t.Cleanup(gateway.Close)

	resolver := NewPackageResolver([]string{"pkg-1", "pkg-2", "pkg-3"}, "Main:SimpleToken")
	client := New(gateway.URL, nil).WithToken("tok")

	resolved, err := resolver.Resolve(context.Background(), client)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != "pkg-2" {
		t.Fatalf("resolved = %q, want pkg-2", resolved)
	}
	if len(probes) != 2 {
		t.Fatalf("probes = %v, want scan stopped at first match", probes)
	}
}

func TestResolveCachesResult(t *testing.T) {
	var probes []string
	gateway := fakePackageGateway(t, "pkg-1", &probes)
	t.Cleanup(gateway.Close)

	resolver := NewPackageResolver([]string{"pkg-1"}, "Main:SimpleToken")
	client := New(gateway.URL, nil).WithToken("tok")

	if _, err := resolver.Resolve(context.Background(), client); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	probes = probes[:0]
	if _, err := resolver.Resolve(context.Background(), client); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if len(probes) != 0 {
		t.Fatalf("probes = %v, want cached result without re-probe", probes)
	}
	if resolver.Resolved() != "pkg-1" {
		t.Fatalf("Resolved() = %q", resolver.Resolved())
	}
}

func TestResolveInvalidateForcesReprobe(t *testing.T) {
	var probes []string
	gateway := fakePackageGateway(t, "pkg-1", &probes)
	t.Cleanup(gateway.Close)

	resolver := NewPackageResolver([]string{"pkg-1"}, "Main:SimpleToken")
	client := New(gateway.URL, nil).WithToken("tok")

	if _, err := resolver.Resolve(context.Background(), client); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	resolver.Invalidate()
	probes = probes[:0]
	if _, err := resolver.Resolve(context.Background(), client); err != nil {
		t.Fatalf("resolve after invalidate: %v", err)
	}
	if len(probes) != 1 {
		t.Fatalf("probes = %v, want exactly one re-probe", probes)
	}
}

func TestResolveExhaustedCandidatesIsNotFound(t *testing.T) {
	gateway := fakePackageGateway(t, "pkg-x", nil)
	t.Cleanup(gateway.Close)

	resolver := NewPackageResolver([]string{"pkg-1", "pkg-2"}, "Main:SimpleToken")
	client := New(gateway.URL, nil).WithToken("tok")

	_, err := resolver.Resolve(context.Background(), client)
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveAbortsOnUnauthorized(t *testing.T) {
	var calls int
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": 401, "errors": []string{"token expired"}})
	}))
	t.Cleanup(gateway.Close)

	resolver := NewPackageResolver([]string{"pkg-1", "pkg-2", "pkg-3"}, "Main:SimpleToken")
	client := New(gateway.URL, nil).WithToken("tok")

	_, err := resolver.Resolve(context.Background(), client)
	if apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want scan aborted on first unauthorized", calls)
	}
}

func TestResolveWithoutCandidatesIsNotFound(t *testing.T) {
	resolver := NewPackageResolver(nil, "Main:SimpleToken")
	_, err := resolver.Resolve(context.Background(), New("http://gateway.invalid", nil))
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddCandidatesDeduplicates(t *testing.T) {
	resolver := NewPackageResolver([]string{"pkg-1"}, "Main:SimpleToken")
	resolver.AddCandidates("pkg-1", "pkg-2", " ", "pkg-2")
	resolver.mu.Lock()
	got := len(resolver.candidates)
	resolver.mu.Unlock()
	if got != 2 {
		t.Fatalf("candidates = %d, want 2", got)
	}
}
