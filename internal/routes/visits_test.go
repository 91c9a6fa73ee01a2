package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"inmo-backoffice/internal/config"
	"inmo-backoffice/internal/gcal"
	"inmo-backoffice/internal/storage"
)

// fakeCalendar is a stand-in calendar provider counting sync calls.
type fakeCalendar struct {
	server *httptest.Server

	creates int32
	updates int32
	deletes int32

	// failInsert makes event creation answer 500.
	failInsert bool
}

func newFakeCalendar(t *testing.T) *fakeCalendar {
	t.Helper()
	f := &fakeCalendar{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/calendars/primary"):
			// Token probe; "valid" answers 200.
			if r.Header.Get("Authorization") == "Bearer valid" {
				w.Write([]byte(`{"id":"primary"}`))
				return
			}
			w.WriteHeader(http.StatusUnauthorized)

		case r.Method == http.MethodPost && r.URL.Path == "/calendars/primary/events":
			atomic.AddInt32(&f.creates, 1)
			if f.failInsert {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"id":"evt-1"}`))

		case r.Method == http.MethodPatch:
			atomic.AddInt32(&f.updates, 1)
			w.Write([]byte(`{"id":"evt-1"}`))

		case r.Method == http.MethodDelete:
			atomic.AddInt32(&f.deletes, 1)
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

type visitTestEnv struct {
	router   *gin.Engine
	provider storage.Provider
	user     *storage.User
	calendar *fakeCalendar
}

func setupVisitTest(t *testing.T, accessToken string) *visitTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := storage.NewProvider(&config.Storage{
		SQLite: &config.SQLiteStorage{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	if provider == nil {
		t.Fatal("failed to create storage provider")
	}
	t.Cleanup(func() { provider.Close() })

	user := storage.User{Email: "agente@example.com"}
	if accessToken != "" {
		user.GoogleAccessToken = &accessToken
	}
	saved, err := provider.CreateUser(context.Background(), user)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	calendar := newFakeCalendar(t)
	deps := &Deps{
		Storage: provider,
		Calendar: gcal.New(gcal.Options{
			TimeZone: "America/Argentina/Buenos_Aires",
			Tokens:   provider,
			BaseURL:  calendar.server.URL,
			TokenURL: calendar.server.URL + "/token",
		}),
		TimeZone: "America/Argentina/Buenos_Aires",
	}

	router := gin.New()
	router.Use(ErrorHandler())
	router.Use(func(c *gin.Context) {
		c.Set("userID", saved.ID)
		c.Set("userRole", storage.RoleAdmin)
	})
	VisitRoutes(router.Group("/api/visitas"), deps)

	return &visitTestEnv{
		router:   router,
		provider: provider,
		user:     saved,
		calendar: calendar,
	}
}

func (env *visitTestEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeVisit(t *testing.T, w *httptest.ResponseRecorder) *storage.Visit {
	t.Helper()
	var res struct {
		Data storage.Visit `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return &res.Data
}

func TestCreateVisit_SyncedToCalendar(t *testing.T) {
	env := setupVisitTest(t, "valid")

	w := env.do(t, http.MethodPost, "/api/visitas", gin.H{
		"title":     "Visita depto Palermo",
		"date":      "2026-09-10",
		"startTime": "15:00",
		"endTime":   "16:00",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	visit := decodeVisit(t, w)
	if visit.GoogleEventID == nil || *visit.GoogleEventID != "evt-1" {
		t.Errorf("googleEventId = %v, want evt-1", visit.GoogleEventID)
	}
	if n := atomic.LoadInt32(&env.calendar.creates); n != 1 {
		t.Errorf("calendar creates = %d, want 1", n)
	}
}

func TestCreateVisit_NoCalendarConnection(t *testing.T) {
	env := setupVisitTest(t, "") // user never connected the calendar

	w := env.do(t, http.MethodPost, "/api/visitas", gin.H{
		"title":     "Visita",
		"date":      "2026-09-10",
		"startTime": "15:00",
		"endTime":   "16:00",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	visit := decodeVisit(t, w)
	if visit.GoogleEventID != nil {
		t.Errorf("googleEventId = %v, want nil", *visit.GoogleEventID)
	}
	if n := atomic.LoadInt32(&env.calendar.creates); n != 0 {
		t.Errorf("calendar creates = %d, want 0", n)
	}

	// The visit still landed in storage.
	got, err := env.provider.GetVisit(context.Background(), env.user.ID, visit.ID)
	if err != nil {
		t.Fatalf("GetVisit: %v", err)
	}
	if got.Title != "Visita" {
		t.Errorf("stored title = %q", got.Title)
	}
}

func TestCreateVisit_CalendarFailureDegrades(t *testing.T) {
	env := setupVisitTest(t, "valid")
	env.calendar.failInsert = true

	w := env.do(t, http.MethodPost, "/api/visitas", gin.H{
		"title":     "Visita",
		"date":      "2026-09-10",
		"startTime": "15:00",
		"endTime":   "16:00",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	visit := decodeVisit(t, w)
	if visit.GoogleEventID != nil {
		t.Error("failed sync must leave googleEventId unset")
	}
}

func TestCreateVisit_MissingFields(t *testing.T) {
	env := setupVisitTest(t, "")

	w := env.do(t, http.MethodPost, "/api/visitas", gin.H{
		"date":      "2026-09-10",
		"startTime": "15:00",
		"endTime":   "16:00",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "obligatorio") {
		t.Errorf("expected Spanish validation message, got %s", w.Body.String())
	}
}

func TestUpdateVisit_SyncsWhenLinked(t *testing.T) {
	env := setupVisitTest(t, "valid")

	w := env.do(t, http.MethodPost, "/api/visitas", gin.H{
		"title":     "Visita",
		"date":      "2026-09-10",
		"startTime": "15:00",
		"endTime":   "16:00",
	})
	visit := decodeVisit(t, w)

	w = env.do(t, http.MethodPatch, "/api/visitas/"+visit.ID, gin.H{
		"title": "Visita reprogramada",
		"date":  "2026-09-11",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if n := atomic.LoadInt32(&env.calendar.updates); n != 1 {
		t.Errorf("calendar updates = %d, want 1", n)
	}
}

func TestUpdateVisit_UnlinkedStaysLocal(t *testing.T) {
	env := setupVisitTest(t, "") // created without calendar, no event ID

	w := env.do(t, http.MethodPost, "/api/visitas", gin.H{
		"title":     "Visita",
		"date":      "2026-09-10",
		"startTime": "15:00",
		"endTime":   "16:00",
	})
	visit := decodeVisit(t, w)

	w = env.do(t, http.MethodPatch, "/api/visitas/"+visit.ID, gin.H{"title": "Otra"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if n := atomic.LoadInt32(&env.calendar.updates); n != 0 {
		t.Errorf("unlinked visit triggered %d calendar updates", n)
	}
}

func TestDeleteVisit_RemovesRemoteEvent(t *testing.T) {
	env := setupVisitTest(t, "valid")

	w := env.do(t, http.MethodPost, "/api/visitas", gin.H{
		"title":     "Visita",
		"date":      "2026-09-10",
		"startTime": "15:00",
		"endTime":   "16:00",
	})
	visit := decodeVisit(t, w)

	w = env.do(t, http.MethodDelete, "/api/visitas/"+visit.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if n := atomic.LoadInt32(&env.calendar.deletes); n != 1 {
		t.Errorf("calendar deletes = %d, want 1", n)
	}
	if _, err := env.provider.GetVisit(context.Background(), env.user.ID, visit.ID); err != storage.ErrNotFound {
		t.Errorf("visit should be gone, got %v", err)
	}
}

func TestDeleteVisit_UnlinkedMakesNoCalendarCall(t *testing.T) {
	env := setupVisitTest(t, "valid")

	// Insert directly with no event ID.
	visit, err := env.provider.CreateVisit(context.Background(), storage.Visit{
		Title:     "Local",
		Date:      "2026-09-10",
		StartTime: "15:00",
		EndTime:   "16:00",
		UserID:    env.user.ID,
	})
	if err != nil {
		t.Fatalf("CreateVisit: %v", err)
	}

	w := env.do(t, http.MethodDelete, "/api/visitas/"+visit.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if n := atomic.LoadInt32(&env.calendar.deletes); n != 0 {
		t.Errorf("calendar deletes = %d, want 0", n)
	}
}

func TestGetVisit_NotFound(t *testing.T) {
	env := setupVisitTest(t, "")

	w := env.do(t, http.MethodGet, "/api/visitas/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Visita no encontrada") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}
