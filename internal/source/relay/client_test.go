package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hyan/noteflow/internal/source"
)

func TestMessagesDecodesResponse(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 7, "title": "hello", "content": "body", "createdAt": 1700000000},
			{"id": 8, "title": "", "content": "second", "createdAt": 1700000060}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key123")
	msgs, err := c.Messages(context.Background(), false)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}

	if gotPath != "/api/message" {
		t.Errorf("path = %q, want /api/message", gotPath)
	}
	if gotQuery.Get("apikey") != "key123" {
		t.Errorf("apikey = %q, want key123", gotQuery.Get("apikey"))
	}
	if gotQuery.Has("verify") {
		t.Error("verify param must be absent on a normal fetch")
	}

	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != 7 || msgs[0].Title != "hello" || msgs[0].Content != "body" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[0].CreatedAt != 1700000000 {
		t.Errorf("createdAt = %d, want 1700000000", msgs[0].CreatedAt)
	}
}

func TestMessagesVerifyOnly(t *testing.T) {
	var gotVerify string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVerify = r.URL.Query().Get("verify")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	if _, err := c.Messages(context.Background(), true); err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if gotVerify != "1" {
		t.Errorf("verify = %q, want 1", gotVerify)
	}
}

func TestMessagesRejectedKey(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := NewClient(srv.URL, "bad")
		_, err := c.Messages(context.Background(), false)
		if !source.IsAuthError(err) {
			t.Errorf("HTTP %d: got %v, want AuthError", status, err)
		}
		srv.Close()
	}
}

func TestMessagesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	_, err := c.Messages(context.Background(), false)
	if err == nil {
		t.Fatal("expected error on HTTP 500")
	}
	if source.IsAuthError(err) {
		t.Error("a 500 must not be reported as an auth failure")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q should carry the response body", err)
	}
}

func TestAttachmentURL(t *testing.T) {
	c := NewClient("https://relay.example/", "k y")
	got := c.AttachmentURL("photo 1.jpg")

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("AttachmentURL returned unparseable URL %q: %v", got, err)
	}
	if u.Path != "/api/email_attach" {
		t.Errorf("path = %q, want /api/email_attach", u.Path)
	}
	q := u.Query()
	if q.Get("apikey") != "k y" {
		t.Errorf("apikey = %q, want %q", q.Get("apikey"), "k y")
	}
	if q.Get("filename") != "photo 1.jpg" {
		t.Errorf("filename = %q, want %q", q.Get("filename"), "photo 1.jpg")
	}
}

func TestAdapterFetchMapsTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "title": "t", "content": "c", "createdAt": 1700000000}]`))
	}))
	defer srv.Close()

	a := NewAdapter(NewClient(srv.URL, "key"))
	msgs, err := a.Fetch(context.Background(), false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	want := time.Unix(1700000000, 0)
	if !msgs[0].CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", msgs[0].CreatedAt, want)
	}
}

func TestAdapterValidateRejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := NewAdapter(NewClient(srv.URL, "bad"))
	if _, err := a.Validate(context.Background()); !source.IsAuthError(err) {
		t.Errorf("Validate error = %v, want AuthError", err)
	}
}
