package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"goldshop/domain"
	"goldshop/internal/categorytree"
	"goldshop/pkg/httperror"
)

type recorded struct {
	method string
	path   string
	header http.Header
	body   map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, header: r.Header.Clone()}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		calls = append(calls, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testClient(url string) *Client {
	return NewClient(url+"/api/v1/", 2*time.Second, Credentials{
		UserID:    "u-1",
		UserEmail: "admin@goldshop.test",
		Token:     "Bearer t0ken",
	})
}

func TestClient_TreeForwardsSecurityHeaders(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"categories":[{"id":"1","name":"Jewelry","sort_order":0,"is_active":true,"children":[{"id":"2","parent_id":"1","name":"Rings","sort_order":0,"is_active":true,"children":[]}]}]}`)

	forest, err := testClient(srv.URL).Tree(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := domain.IDs(domain.Flatten(forest)); len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("expected [1 2], got %v", got)
	}

	call := (*calls)[0]
	if call.method != http.MethodGet || call.path != "/api/v1/categories/tree" {
		t.Fatalf("expected GET /api/v1/categories/tree, got %s %s", call.method, call.path)
	}
	if call.header.Get("User-ID") != "u-1" || call.header.Get("User-Email") != "admin@goldshop.test" || call.header.Get("Authorization") != "Bearer t0ken" {
		t.Fatalf("expected security headers to be forwarded, got %v", call.header)
	}
}

func TestClient_BulkUpdateBody(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"updated":2}`)

	err := testClient(srv.URL).BulkUpdate(context.Background(), []string{"1", "2"}, map[string]any{"color": "#ff0000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := (*calls)[0].body
	updates, ok := body["updates"].(map[string]any)
	if !ok || len(updates) != 1 || updates["color"] != "#ff0000" {
		t.Fatalf("expected updates {color:#ff0000}, got %v", body["updates"])
	}
	if ids, _ := body["ids"].([]any); len(ids) != 2 {
		t.Fatalf("expected two ids, got %v", body["ids"])
	}
}

func TestClient_ReorderToRootSendsNullParent(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{}`)

	order := 0
	err := testClient(srv.URL).Reorder(context.Background(), categorytree.MoveRequest{ID: "4", NewSortOrder: &order})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := (*calls)[0].body
	parent, present := body["new_parent_id"]
	if !present || parent != nil {
		t.Fatalf("expected new_parent_id null, got %v (present=%v)", parent, present)
	}
	if body["id"] != "4" {
		t.Fatalf("expected id 4, got %v", body["id"])
	}
}

func TestClient_DeleteBlockedByProducts(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusConflict, `{"code":"category.bulk_delete.has_products","message":"Categories still hold products","details":{"ids":["1"]}}`)

	err := testClient(srv.URL).BulkDelete(context.Background(), []string{"1"}, false)
	if !IsBlockedByProducts(err) {
		t.Fatalf("expected products error, got %v", err)
	}

	var httpErr *httperror.Error
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *httperror.Error in chain, got %T", err)
	}
	if httpErr.Status != http.StatusConflict || httpErr.Message != "Categories still hold products" {
		t.Fatalf("expected 409 with server message, got %d %q", httpErr.Status, httpErr.Message)
	}

	code, msg := categorytree.Message(err)
	if code != domain.CodeCategoryHasProducts || msg != "Categories still hold products" {
		t.Fatalf("expected server code and message, got %q %q", code, msg)
	}
}

func TestClient_UnexpectedErrorBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadGateway, `upstream down`)

	err := testClient(srv.URL).BulkMove(context.Background(), []string{"1"}, nil)
	var httpErr *httperror.Error
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *httperror.Error, got %v", err)
	}
	if httpErr.Code != "inventory.unexpected_response" || httpErr.Status != http.StatusBadGateway {
		t.Fatalf("expected unexpected_response 502, got %q %d", httpErr.Code, httpErr.Status)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := testClient(srv.URL).BulkDelete(ctx, []string{"1"}, true); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(*calls) != 0 {
		t.Fatalf("expected no request, got %d", len(*calls))
	}
}
