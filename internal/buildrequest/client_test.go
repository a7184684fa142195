package buildrequest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func triggerServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *url.Values) {
	t.Helper()
	var last url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = r.URL.Query()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestClientSuccess(t *testing.T) {
	srv, q := triggerServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	})

	c := NewClient(srv.URL+"/api/requestBuildSite", srv.Client())
	if err := c.RequestBuild(context.Background(), "sha1://abc", ""); err != nil {
		t.Fatalf("RequestBuild: %v", err)
	}
	if got := q.Get("siteUri"); got != "sha1://abc" {
		t.Errorf("siteUri = %q, want %q", got, "sha1://abc")
	}
	if got := q.Get("kacheryZone"); got != "default" {
		t.Errorf("kacheryZone = %q, want %q", got, "default")
	}
}

func TestClientPassesZone(t *testing.T) {
	srv, q := triggerServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})
	c := NewClient(srv.URL, srv.Client())
	if err := c.RequestBuild(context.Background(), "zenodo://1/a&b", "lab"); err != nil {
		t.Fatalf("RequestBuild: %v", err)
	}
	if q.Get("kacheryZone") != "lab" || q.Get("siteUri") != "zenodo://1/a&b" {
		t.Errorf("query = %v", *q)
	}
}

func TestClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "payload failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success":false,"errorMessage":"X"}`))
			},
			wantMsg: "X",
		},
		{
			name: "service unavailable",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantMsg: "503 Service Unavailable",
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "Missing siteUri", http.StatusBadRequest)
			},
			wantMsg: "400 Bad Request",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := triggerServer(t, tt.handler)
			err := NewClient(srv.URL, srv.Client()).RequestBuild(context.Background(), "sha1://x", "")
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestClientDecodeFailure(t *testing.T) {
	srv, _ := triggerServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	if err := NewClient(srv.URL, srv.Client()).RequestBuild(context.Background(), "sha1://x", ""); err == nil {
		t.Error("expected decode error")
	}
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()
	if err := NewClient(endpoint, nil).RequestBuild(context.Background(), "sha1://x", ""); err == nil {
		t.Error("expected transport error")
	}
}
