package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/harborline/ledgerdeck/internal/platform/errors"
)

func TestPartiesDecodesResult(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/parties" {
			t.Fatalf("path = %q, want /v1/parties", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("authorization = %q, want bearer token", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": 200,
			"result": []map[string]any{
				{"identifier": "Alice::12ab", "displayName": "Alice", "isLocal": true},
				{"identifier": "Bob::34cd", "displayName": "Bob", "isLocal": true},
			},
		})
	}))
	t.Cleanup(gateway.Close)

	client := New(gateway.URL, nil).WithToken("tok-1")
	parties, err := client.Parties(context.Background())
	if err != nil {
		t.Fatalf("parties: %v", err)
	}
	if len(parties) != 2 {
		t.Fatalf("len(parties) = %d, want 2", len(parties))
	}
	if parties[0].Identifier != "Alice::12ab" || parties[0].DisplayName != "Alice" {
		t.Fatalf("unexpected first party %+v", parties[0])
	}
}

func TestQuerySendsTemplateIDs(t *testing.T) {
	var gotBody queryRequest
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/query" || r.Method != http.MethodPost {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": 200,
			"result": []map[string]any{
				{"contractId": "#1:0", "templateId": "pkg:Main:SimpleToken", "payload": map[string]any{"issuer": "Alice::12ab", "owner": "Bob::34cd", "amount": "10.0"}},
			},
		})
	}))
	t.Cleanup(gateway.Close)

	client := New(gateway.URL, nil).WithToken("tok")
	contracts, err := client.Query(context.Background(), []string{"pkg:Main:SimpleToken"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(gotBody.TemplateIDs) != 1 || gotBody.TemplateIDs[0] != "pkg:Main:SimpleToken" {
		t.Fatalf("unexpected request template ids %v", gotBody.TemplateIDs)
	}
	if len(contracts) != 1 || contracts[0].ContractID != "#1:0" {
		t.Fatalf("unexpected contracts %+v", contracts)
	}
}

func TestQueryRequiresTemplateIDs(t *testing.T) {
	client := New("http://gateway.invalid", nil)
	if _, err := client.Query(context.Background(), nil); apperrors.KindOf(err) != apperrors.KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCreateReturnsContract(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.TemplateID != "pkg:Main:SimpleToken" {
			t.Fatalf("template id = %q", req.TemplateID)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": 200,
			"result": map[string]any{"contractId": "#9:0", "templateId": req.TemplateID, "payload": req.Payload},
		})
	}))
	t.Cleanup(gateway.Close)

	client := New(gateway.URL, nil).WithToken("tok")
	contract, err := client.Create(context.Background(), "pkg:Main:SimpleToken", map[string]any{"issuer": "A", "owner": "B", "amount": "5.0"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if contract.ContractID != "#9:0" {
		t.Fatalf("contract id = %q", contract.ContractID)
	}
}

func TestExerciseSendsChoice(t *testing.T) {
	var got exerciseRequest
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": 200,
			"result": map[string]any{"exerciseResult": map[string]any{}, "events": []any{}},
		})
	}))
	t.Cleanup(gateway.Close)

	client := New(gateway.URL, nil).WithToken("tok")
	if _, err := client.Exercise(context.Background(), "pkg:Main:Escrow", "#2:0", "Release", nil); err != nil {
		t.Fatalf("exercise: %v", err)
	}
	if got.Choice != "Release" || got.ContractID != "#2:0" {
		t.Fatalf("unexpected exercise request %+v", got)
	}
	if got.Argument == nil {
		t.Fatal("expected empty argument object, got nil")
	}
}

func TestCallMapsGatewayErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   apperrors.Kind
	}{
		{"unauthorized", http.StatusUnauthorized, apperrors.KindUnauthorized},
		{"forbidden", http.StatusForbidden, apperrors.KindUnauthorized},
		{"rejected", http.StatusBadRequest, apperrors.KindInvalidInput},
		{"missing", http.StatusNotFound, apperrors.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(map[string]any{"status": tc.status, "errors": []string{"nope"}})
			}))
			t.Cleanup(gateway.Close)

			client := New(gateway.URL, nil).WithToken("tok")
			_, err := client.Parties(context.Background())
			if apperrors.KindOf(err) != tc.want {
				t.Fatalf("kind = %v, want %v (err %v)", apperrors.KindOf(err), tc.want, err)
			}
		})
	}
}

func TestCallRetriesTransientFailures(t *testing.T) {
	var calls int
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": 503, "errors": []string{"starting up"}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": 200, "result": []any{}})
	}))
	t.Cleanup(gateway.Close)

	client := New(gateway.URL, nil).WithToken("tok")
	if _, err := client.Parties(context.Background()); err != nil {
		t.Fatalf("expected retries to succeed, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestCallDoesNotRetryRejections(t *testing.T) {
	var calls int
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": 400, "errors": []string{"unknown template"}})
	}))
	t.Cleanup(gateway.Close)

	client := New(gateway.URL, nil).WithToken("tok")
	_, err := client.Query(context.Background(), []string{"bad:Main:SimpleToken"})
	if apperrors.KindOf(err) != apperrors.KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (rejections must not retry)", calls)
	}
}

func TestCallUnreachableGatewayIsUnavailable(t *testing.T) {
	client := New("http://127.0.0.1:1", nil).WithToken("tok")
	_, err := client.Parties(context.Background())
	if apperrors.KindOf(err) != apperrors.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
