package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/zen-figurl/internal/db"
)

type fakeDispatcher struct {
	mu     sync.Mutex
	status int
	err    error
	calls  []string
	tokens []string
}

func (f *fakeDispatcher) DispatchWorkflow(_ context.Context, token, siteURI, zone string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, siteURI+"|"+zone)
	f.tokens = append(f.tokens, token)
	return f.status, f.err
}

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func setupRouter(t *testing.T, d WorkflowDispatcher, store *Store, opts Options) chi.Router {
	t.Helper()
	h, err := NewHandler(d, store, opts)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	r := chi.NewRouter()
	RegisterRoutes(r, h)
	return r
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRequestSuccess(t *testing.T) {
	fd := &fakeDispatcher{status: http.StatusNoContent}
	store := setupStore(t)
	r := setupRouter(t, fd, store, Options{Token: "tok"})

	rec := do(r, http.MethodGet, "/api/requestBuildSite?siteUri=sha1://abc&kacheryZone=lab")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != true {
		t.Errorf("body = %v, want success:true", body)
	}
	if len(fd.calls) != 1 || fd.calls[0] != "sha1://abc|lab" {
		t.Errorf("dispatch calls = %v", fd.calls)
	}
	if fd.tokens[0] != "tok" {
		t.Errorf("token = %q, want tok", fd.tokens[0])
	}

	records, err := store.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].Outcome != OutcomeDispatched || records[0].GitHubStatus != 204 {
		t.Errorf("records = %+v", records)
	}
}

func TestRequestDefaultsZone(t *testing.T) {
	fd := &fakeDispatcher{status: http.StatusNoContent}
	r := setupRouter(t, fd, nil, Options{Token: "tok"})
	do(r, http.MethodGet, "/api/requestPrepareSite?siteUri=zenodo://1/x")
	if len(fd.calls) != 1 || fd.calls[0] != "zenodo://1/x|default" {
		t.Errorf("dispatch calls = %v, want default zone", fd.calls)
	}
}

func TestRequestRejections(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		token    string
		allowed  []string
		wantCode int
		wantBody string
	}{
		{"method", http.MethodPost, "/api/requestBuildSite?siteUri=x", "tok", nil, 400, "Invalid method"},
		{"missing uri", http.MethodGet, "/api/requestBuildSite", "tok", nil, 400, "Missing siteUri"},
		{"missing token", http.MethodGet, "/api/requestBuildSite?siteUri=x", "", nil, 400, "Missing github token"},
		{"not allowed", http.MethodGet, "/api/requestBuildSite?siteUri=ftp://x", "tok", []string{"sha1://*", "zenodo://**"}, 400, "Unsupported siteUri"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd := &fakeDispatcher{status: http.StatusNoContent}
			r := setupRouter(t, fd, setupStore(t), Options{Token: tt.token, AllowedPatterns: tt.allowed})
			rec := do(r, tt.method, tt.target)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			if len(fd.calls) != 0 {
				t.Errorf("dispatcher called %d times", len(fd.calls))
			}
		})
	}
}

func TestRequestAllowedPattern(t *testing.T) {
	fd := &fakeDispatcher{status: http.StatusNoContent}
	r := setupRouter(t, fd, nil, Options{Token: "tok", AllowedPatterns: []string{"sha1://*", "zenodo://**"}})
	for _, uri := range []string{"sha1://abc", "zenodo://12/dir/site.tgz"} {
		if rec := do(r, http.MethodGet, "/api/requestBuildSite?siteUri="+uri); rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", uri, rec.Code)
		}
	}
}

func TestInvalidPattern(t *testing.T) {
	if _, err := NewHandler(&fakeDispatcher{}, nil, Options{AllowedPatterns: []string{"sha1://[abc"}}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestRequestDispatchFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		err      error
		wantBody string
	}{
		{"error", 404, errors.New("not found"), "Error: not found"},
		{"unexpected status", 200, nil, "Error triggering workflow: 200 OK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupStore(t)
			r := setupRouter(t, &fakeDispatcher{status: tt.status, err: tt.err}, store, Options{Token: "tok"})
			rec := do(r, http.MethodGet, "/api/requestBuildSite?siteUri=sha1://x")
			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			records, _ := store.List(context.Background(), ListFilter{Outcome: OutcomeFailed})
			if len(records) != 1 {
				t.Errorf("failed records = %d, want 1", len(records))
			}
		})
	}
}

func TestListEndpoint(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	for _, uri := range []string{"sha1://a", "sha1://b", "sha1://a"} {
		if _, err := store.Log(ctx, Record{SiteURI: uri, Outcome: OutcomeDispatched}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	r := setupRouter(t, &fakeDispatcher{}, store, Options{})

	rec := do(r, http.MethodGet, "/api/dispatches?site=sha1://a")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var records []Record
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("records = %d, want 2", len(records))
	}
	for _, rr := range records {
		if rr.KacheryZone != "default" || rr.ID == "" {
			t.Errorf("record = %+v", rr)
		}
	}

	rec = do(r, http.MethodGet, "/api/dispatches?limit=1")
	records = nil
	json.NewDecoder(rec.Body).Decode(&records)
	if len(records) != 1 {
		t.Errorf("limited records = %d, want 1", len(records))
	}
}

func TestListWithoutStore(t *testing.T) {
	r := setupRouter(t, &fakeDispatcher{}, nil, Options{})
	rec := do(r, http.MethodGet, "/api/dispatches")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestStoreCountSince(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	store.Log(ctx, Record{SiteURI: "sha1://a", Outcome: OutcomeDispatched})
	store.Log(ctx, Record{SiteURI: "sha1://a", Outcome: OutcomeFailed})

	n, err := store.CountSince(ctx, "sha1://a", OutcomeDispatched, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if n != 1 {
		t.Errorf("CountSince = %d, want 1", n)
	}
}

func TestGitHubDispatcher(t *testing.T) {
	var (
		gotPath  string
		gotAuth  string
		gotEvent struct {
			Ref    string            `json:"ref"`
			Inputs map[string]string `json:"inputs"`
		}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotEvent)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d, err := NewGitHubDispatcher(GitHubConfig{
		Owner:    "magland",
		Repo:     "zen-figurl",
		Workflow: "prepare-site.yml",
		Branch:   "main",
		APIURL:   srv.URL,
	})
	if err != nil {
		t.Fatalf("NewGitHubDispatcher: %v", err)
	}

	status, err := d.DispatchWorkflow(context.Background(), "secret", "sha1://abc", "default")
	if err != nil {
		t.Fatalf("DispatchWorkflow: %v", err)
	}
	if status != http.StatusNoContent {
		t.Errorf("status = %d, want 204", status)
	}
	if gotPath != "POST /repos/magland/zen-figurl/actions/workflows/prepare-site.yml/dispatches" {
		t.Errorf("request = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
	}
	if gotEvent.Ref != "main" || gotEvent.Inputs["siteUri"] != "sha1://abc" || gotEvent.Inputs["kacheryZone"] != "default" {
		t.Errorf("event = %+v", gotEvent)
	}
}

func TestGitHubDispatcherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	d, _ := NewGitHubDispatcher(GitHubConfig{Owner: "o", Repo: "r", Workflow: "w.yml", Branch: "main", APIURL: srv.URL})
	status, err := d.DispatchWorkflow(context.Background(), "t", "sha1://x", "default")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestNewGitHubDispatcherValidation(t *testing.T) {
	if _, err := NewGitHubDispatcher(GitHubConfig{Owner: "o"}); err == nil {
		t.Error("expected error for incomplete config")
	}
}
