package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type fakeTokenStore struct {
	access  *string
	refresh *string

	saved      []string
	getErr     error
	saveErr    error
	saveCalled int
}

func (s *fakeTokenStore) GetUserTokens(ctx context.Context, userID string) (*string, *string, error) {
	return s.access, s.refresh, s.getErr
}

func (s *fakeTokenStore) SaveUserAccessToken(ctx context.Context, userID string, token string) error {
	s.saveCalled++
	s.saved = append(s.saved, token)
	return s.saveErr
}

func strptr(s string) *string { return &s }

// fakeProvider simulates the calendar API probe endpoint and the OAuth token
// endpoint, counting refresh calls.
type fakeProvider struct {
	calendar *httptest.Server
	token    *httptest.Server

	validTokens map[string]bool
	refreshes   atomic.Int32
	newToken    string
	refreshFail bool
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	p := &fakeProvider{
		validTokens: map[string]bool{},
		newToken:    "refreshed-token",
	}

	p.calendar = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if p.validTokens[token] {
			json.NewEncoder(w).Encode(map[string]string{"id": "primary"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(p.calendar.Close)

	p.token = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.refreshes.Add(1)
		if p.refreshFail {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		if r.FormValue("grant_type") != "refresh_token" {
			t.Errorf("unexpected grant_type %q", r.FormValue("grant_type"))
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": p.newToken})
	}))
	t.Cleanup(p.token.Close)

	return p
}

func (p *fakeProvider) accept(token string) {
	p.validTokens["Bearer "+token] = true
}

func newTestClient(p *fakeProvider, store TokenStore) *Client {
	return New(Options{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TimeZone:     testZone,
		Tokens:       store,
		BaseURL:      p.calendar.URL,
		TokenURL:     p.token.URL,
	})
}

func TestValidToken_CachedTokenStillValid(t *testing.T) {
	provider := newFakeProvider(t)
	provider.accept("cached-token")

	store := &fakeTokenStore{access: strptr("cached-token"), refresh: strptr("refresh")}
	client := newTestClient(provider, store)

	token, ok := client.ValidToken(context.Background(), "user-1")
	if !ok || token != "cached-token" {
		t.Fatalf("ValidToken = (%q, %v), want cached token", token, ok)
	}
	if n := provider.refreshes.Load(); n != 0 {
		t.Errorf("refresh endpoint called %d times for a valid token", n)
	}
	if store.saveCalled != 0 {
		t.Errorf("token persisted %d times without a refresh", store.saveCalled)
	}
}

func TestValidToken_NoAccessToken(t *testing.T) {
	provider := newFakeProvider(t)
	store := &fakeTokenStore{}
	client := newTestClient(provider, store)

	if token, ok := client.ValidToken(context.Background(), "user-1"); ok || token != "" {
		t.Fatalf("ValidToken = (%q, %v), want not connected", token, ok)
	}
	if n := provider.refreshes.Load(); n != 0 {
		t.Errorf("refresh endpoint called %d times for a disconnected user", n)
	}
}

func TestValidToken_ExpiredTokenRefreshes(t *testing.T) {
	provider := newFakeProvider(t)

	store := &fakeTokenStore{access: strptr("stale-token"), refresh: strptr("refresh-token")}
	client := newTestClient(provider, store)

	token, ok := client.ValidToken(context.Background(), "user-1")
	if !ok || token != "refreshed-token" {
		t.Fatalf("ValidToken = (%q, %v), want refreshed token", token, ok)
	}
	if len(store.saved) != 1 || store.saved[0] != "refreshed-token" {
		t.Errorf("persisted tokens = %v, want the refreshed one", store.saved)
	}
}

func TestValidToken_ExpiredWithoutRefreshToken(t *testing.T) {
	provider := newFakeProvider(t)

	store := &fakeTokenStore{access: strptr("stale-token")}
	client := newTestClient(provider, store)

	if _, ok := client.ValidToken(context.Background(), "user-1"); ok {
		t.Fatal("expected unavailable without refresh token")
	}
	if n := provider.refreshes.Load(); n != 0 {
		t.Errorf("refresh endpoint called %d times without a refresh token", n)
	}
}

func TestValidToken_RefreshFailure(t *testing.T) {
	provider := newFakeProvider(t)
	provider.refreshFail = true

	store := &fakeTokenStore{access: strptr("stale-token"), refresh: strptr("refresh-token")}
	client := newTestClient(provider, store)

	if _, ok := client.ValidToken(context.Background(), "user-1"); ok {
		t.Fatal("expected unavailable on refresh failure")
	}
	if store.saveCalled != 0 {
		t.Error("nothing should be persisted on refresh failure")
	}
}

func TestValidToken_MissingClientCredentials(t *testing.T) {
	provider := newFakeProvider(t)

	store := &fakeTokenStore{access: strptr("stale-token"), refresh: strptr("refresh-token")}
	client := New(Options{
		TimeZone: testZone,
		Tokens:   store,
		BaseURL:  provider.calendar.URL,
		TokenURL: provider.token.URL,
	})

	if _, ok := client.ValidToken(context.Background(), "user-1"); ok {
		t.Fatal("expected unavailable without client credentials")
	}
	if n := provider.refreshes.Load(); n != 0 {
		t.Errorf("refresh endpoint called %d times without credentials", n)
	}
}

func TestValidToken_StoreError(t *testing.T) {
	provider := newFakeProvider(t)

	store := &fakeTokenStore{getErr: errors.New("db closed")}
	client := newTestClient(provider, store)

	if _, ok := client.ValidToken(context.Background(), "user-1"); ok {
		t.Fatal("expected unavailable on store error")
	}
}

func TestCreateEvent(t *testing.T) {
	var gotBody eventBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/calendars/primary/events" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"id": "evt-123"})
	}))
	defer server.Close()

	client := New(Options{TimeZone: testZone, BaseURL: server.URL})

	eventID, err := client.CreateEvent(context.Background(), "tok", EventInput{
		Title:     "Visita",
		Date:      "2026-02-26",
		StartTime: "14:00",
		EndTime:   "15:00",
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if eventID != "evt-123" {
		t.Errorf("eventID = %q", eventID)
	}
	if gotBody.Start.DateTime != "2026-02-26T14:00:00" {
		t.Errorf("sent start = %q", gotBody.Start.DateTime)
	}
}

func TestCreateEvent_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"insufficient permissions"}}`))
	}))
	defer server.Close()

	client := New(Options{TimeZone: testZone, BaseURL: server.URL})

	_, err := client.CreateEvent(context.Background(), "tok", EventInput{
		Title: "Visita", Date: "2026-02-26", StartTime: "14:00", EndTime: "15:00",
	})

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if provErr.Status != http.StatusForbidden {
		t.Errorf("status = %d", provErr.Status)
	}
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "evt-1"})
	}))
	defer server.Close()

	client := New(Options{TimeZone: testZone, BaseURL: server.URL})
	input := EventInput{Title: "Visita", Date: "2026-02-26", StartTime: "14:00", EndTime: "15:00"}

	if err := client.UpdateEvent(context.Background(), "tok", "evt-1", input); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if err := client.DeleteEvent(context.Background(), "tok", "evt-1"); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	want := []string{
		"PATCH /calendars/primary/events/evt-1",
		"DELETE /calendars/primary/events/evt-1",
	}
	for i, w := range want {
		if methods[i] != w {
			t.Errorf("request %d = %q, want %q", i, methods[i], w)
		}
	}
}
