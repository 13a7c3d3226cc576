package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Zachkp/greek-portfolio/internal/config"
	"github.com/Zachkp/greek-portfolio/internal/contact"
	"github.com/Zachkp/greek-portfolio/internal/content"
	"github.com/Zachkp/greek-portfolio/internal/glyph"
	"github.com/Zachkp/greek-portfolio/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []contact.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg contact.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

type testServer struct {
	*server
	engine *gin.Engine
	sender *recordingSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{
		TemplateGlob:     "templates/*",
		StaticDir:        "./static",
		AdminUsername:    "admin",
		AdminPassword:    "s3cret",
		SuccessWindow:    contact.DefaultSuccessWindow,
		ErrorWindow:      contact.DefaultErrorWindow,
		VisitorRetention: 24 * time.Hour,
		MessageRetention: 48 * time.Hour,
		FrameInterval:    time.Millisecond,
	}
	sender := &recordingSender{}
	srv := newServer(cfg, zap.NewNop(), st, content.NewStore(content.Default()), sender)
	t.Cleanup(srv.close)
	return &testServer{server: srv, engine: srv.routes(), sender: sender}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validForm() url.Values {
	return url.Values{
		"name":    {"Ada Lovelace"},
		"email":   {"ada@example.com"},
		"message": {"Enjoyed the publications section."},
	}
}

func TestIndexRendersProfile(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Adil Afzal")
	assert.Contains(t, body, `data-card="project-1"`)
	assert.Contains(t, body, `data-card="publication-1"`)
	assert.Contains(t, body, glyph.Numeral(1))
	assert.Contains(t, body, "transition-delay: 250ms")
}

func TestContactValidationFailure(t *testing.T) {
	ts := newTestServer(t)
	form := validForm()
	form.Set("name", "")
	form.Set("email", "not-an-email")

	w := ts.do(postForm("/contact", form))

	// htmx drops 4xx bodies, so the fragment must come back as 200.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="name" name="name" type="text" value="" autofocus`)
	assert.Contains(t, w.Body.String(), "Name is required")
	assert.Contains(t, w.Body.String(), "Please enter a valid email address")
	assert.Contains(t, w.Body.String(), "Enjoyed the publications section.")
	assert.Empty(t, ts.sender.sent)

	msgs, err := ts.store.Messages(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestContactDelivered(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(postForm("/contact", validForm()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Thank you for your message!")
	assert.Contains(t, w.Body.String(), `data-dismiss-after="5000"`)
	require.Len(t, ts.sender.sent, 1)
	assert.Equal(t, "Ada Lovelace", ts.sender.sent[0].Name)

	msgs, err := ts.store.Messages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, store.StatusDelivered, msgs[0].Status)
	assert.Equal(t, ts.sender.sent[0].ID.String(), msgs[0].ID)
	assert.NotEqual(t, "192.0.2.1", msgs[0].HashedIP)
}

func TestContactDeliveryFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.sender.err = errors.New("smtp: connection refused")

	w := ts.do(postForm("/contact", validForm()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), contact.GeneralError)
	assert.Contains(t, w.Body.String(), `data-dismiss-after="8000"`)
	// the visitor's input survives for a retry
	assert.Contains(t, w.Body.String(), "ada@example.com")

	msgs, err := ts.store.Messages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, store.StatusFailed, msgs[0].Status)
	assert.Contains(t, msgs[0].Error, "connection refused")
}

func TestValidateAPI(t *testing.T) {
	ts := newTestServer(t)

	body := `{"name":"A","email":"ada@example.com","message":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := ts.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
		Focus  string            `json:"focus"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, "name", resp.Focus)
	assert.Equal(t, map[string]string{
		"name":    "Name must be at least 2 characters",
		"message": "Message must be at least 10 characters",
	}, resp.Errors)
}

func TestGlyphsAPI(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		status int
		glyphs int
	}{
		{"full", "?documentHeight=4000&viewportHeight=900&viewportWidth=1400", http.StatusOK, 45},
		{"narrow viewport is compact", "?viewportHeight=700&viewportWidth=400", http.StatusOK, 18},
		{"explicit compact override", "?viewportWidth=1400&compact=true", http.StatusOK, 18},
		{"reduced motion", "?reducedMotion=true", http.StatusOK, 0},
		{"negative height", "?documentHeight=-1", http.StatusBadRequest, 0},
		{"infinite document height", "?documentHeight=Inf&viewportHeight=900", http.StatusBadRequest, 0},
		{"infinite viewport height", "?documentHeight=3000&viewportHeight=Inf", http.StatusBadRequest, 0},
		{"NaN viewport width", "?viewportWidth=NaN", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(httptest.NewRequest(http.MethodGet, "/api/glyphs"+tt.query, nil))
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status != http.StatusOK {
				return
			}
			var batch glyph.Batch
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
			assert.Len(t, batch.Glyphs, tt.glyphs)
		})
	}
}

func TestCardsAPI(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/cards", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Cards []struct {
			ID    string `json:"id"`
			Delay int64  `json:"delay"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Cards)
	assert.Equal(t, "project-1", resp.Cards[0].ID)
	assert.Equal(t, int64(150*time.Millisecond), resp.Cards[1].Delay)
}

func TestVisitorTracking(t *testing.T) {
	ts := newTestServer(t)

	ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	dnt := httptest.NewRequest(http.MethodGet, "/", nil)
	dnt.Header.Set("DNT", "1")
	ts.do(dnt)
	ts.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	ts.admin.wait()

	visits, err := ts.store.Visitors(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "/", visits[0].Path)
	assert.Len(t, visits[0].HashedIP, 16)
}

func login(t *testing.T, ts *testServer) *http.Cookie {
	t.Helper()
	w := ts.do(postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}}))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
	for _, c := range w.Result().Cookies() {
		if c.Name == "admin_token" {
			return c
		}
	}
	t.Fatal("no admin_token cookie")
	return nil
}

func TestAdminRequiresLogin(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	bad := &http.Cookie{Name: "admin_token", Value: "forged"}
	req := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.AddCookie(bad)
	assert.Equal(t, http.StatusFound, ts.do(req).Code)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"admin123"}}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestAdminDashboardAndStats(t *testing.T) {
	ts := newTestServer(t)
	ts.do(postForm("/contact", validForm()))
	cookie := login(t, ts)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(cookie)
	w := ts.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ada Lovelace")

	req = httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.AddCookie(cookie)
	w = ts.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	var stats store.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalMessages)
	assert.Equal(t, int64(1), stats.DeliveredMessages)

	req = httptest.NewRequest(http.MethodGet, "/admin/export/stats", nil)
	req.AddCookie(cookie)
	w = ts.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "admin-stats.json")
}

func TestAdminDeleteMessage(t *testing.T) {
	ts := newTestServer(t)
	ts.do(postForm("/contact", validForm()))
	require.Len(t, ts.sender.sent, 1)
	id := ts.sender.sent[0].ID.String()
	cookie := login(t, ts)

	del := func(id string) int {
		req := httptest.NewRequest(http.MethodDelete, "/admin/messages/"+id, nil)
		req.AddCookie(cookie)
		return ts.do(req).Code
	}
	assert.Equal(t, http.StatusOK, del(id))
	assert.Equal(t, http.StatusNotFound, del(id))

	msgs, err := ts.store.Messages(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestPrivacyPage(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(httptest.NewRequest(http.MethodGet, "/privacy", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Do Not Track")
	assert.Contains(t, w.Body.String(), "24h0m0s")
	assert.Contains(t, w.Body.String(), "48h0m0s")
}

func TestPrivacyCleanupAgesOutMessages(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.store.RecordContact(ctx, store.ContactRecord{
		ID: "stale", Name: "Old", Email: "old@example.com", Body: "from last year",
		Status: store.StatusFailed, CreatedAt: time.Now().Add(-72 * time.Hour),
	}))
	require.NoError(t, ts.store.RecordVisit(ctx, store.Visit{HashedIP: "stale", Timestamp: time.Now().Add(-48 * time.Hour)}))
	ts.do(postForm("/contact", validForm()))
	cookie := login(t, ts)

	req := httptest.NewRequest(http.MethodPost, "/admin/privacy/delete-visitor-data", nil)
	req.AddCookie(cookie)
	require.Equal(t, http.StatusOK, ts.do(req).Code)

	msgs, err := ts.store.Messages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Ada Lovelace", msgs[0].Name)

	visits, err := ts.store.Visitors(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, visits)
}

func TestContactFragmentsReturnToEmptyForm(t *testing.T) {
	ts := newTestServer(t)
	reload := `hx-get="/contact-form" hx-target="#contact-result" hx-swap="outerHTML"`

	w := ts.do(httptest.NewRequest(http.MethodGet, "/contact-form", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<div id="contact-result">`)
	assert.Contains(t, w.Body.String(), reload)
	assert.NotContains(t, w.Body.String(), `type="reset"`)

	form := validForm()
	form.Set("message", "short")
	w = ts.do(postForm("/contact", form))
	assert.Contains(t, w.Body.String(), reload+`>Clear</button>`)

	w = ts.do(postForm("/contact", validForm()))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-dismiss-reload="/contact-form"`)
	assert.Contains(t, w.Body.String(), reload+`>Send another</button>`)
}

func TestParallaxClientPlacesGlyphsByTransformOnly(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(httptest.NewRequest(http.MethodGet, "/static/parallax.js", nil))
	require.Equal(t, http.StatusOK, w.Code)

	js := w.Body.String()
	// Frame transforms carry absolute positions; offsetting the element too
	// would place every glyph twice.
	assert.NotContains(t, js, "style.top")
	assert.NotContains(t, js, "style.left")
	assert.Contains(t, js, `"translate(" + x + "vw," + y + "px)`)
}

func TestGlyphsCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"glyphs", "--compact", "--seed", "7", "--viewport-height", "600"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	var batch glyph.Batch
	require.NoError(t, json.Unmarshal(out.Bytes(), &batch))
	assert.True(t, batch.Compact)
	assert.Len(t, batch.Glyphs, 18)
	assert.Equal(t, float64(600), batch.ViewportHeight)
}
