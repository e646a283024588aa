package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/config"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/model"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/session"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Item{}, &model.Category{}, &model.Activity{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		App: config.AppConfig{GinMode: gin.TestMode},
		Auth: config.AuthConfig{
			SessionTTLHour:  24,
			RememberTTLHour: 720,
			JWTSecret:       "test-secret",
			JWTExpireMinute: 60,
		},
	}

	return NewRouter(Deps{
		Config:       cfg,
		DB:           db,
		Sessions:     session.NewStore(client, 24*time.Hour, 720*time.Hour),
		TemplateGlob: "../../../web/templates/*.html",
		StartedAt:    time.Now(),
	})
}

func postForm(t *testing.T, router *gin.Engine, path string, form url.Values, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, router *gin.Engine, path, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, name, email string) {
	t.Helper()
	w := postForm(t, router, "/register", url.Values{
		"name":           {name},
		"email":          {email},
		"password":       {"password123"},
		"password_again": {"password123"},
	}, "")
	if w.Code != http.StatusFound {
		t.Fatalf("register %s: status %d, body %s", email, w.Code, w.Body.String())
	}
}

// loginUser returns the session cookie of a fresh login.
func loginUser(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	w := postForm(t, router, "/login", url.Values{
		"email":    {email},
		"password": {"password123"},
	}, "")
	if w.Code != http.StatusFound {
		t.Fatalf("login %s: status %d", email, w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_token" && c.Value != "" {
			return c.Name + "=" + c.Value
		}
	}
	t.Fatal("no session cookie set")
	return ""
}

// createItem posts the item form and returns the new item's page path.
func createItem(t *testing.T, router *gin.Engine, cookie, title string, private bool) string {
	t.Helper()
	form := url.Values{
		"kind":    {model.KindNews},
		"title":   {title},
		"content": {"content of " + title},
	}
	if private {
		form.Set("is_private", "on")
	}
	w := postForm(t, router, "/items/new", form, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("create item: status %d, body %s", w.Code, w.Body.String())
	}
	location := w.Header().Get("Location")
	if !strings.HasPrefix(location, "/items/") {
		t.Fatalf("create item redirected to %q", location)
	}
	return location
}

func TestRegisterValidationRerendersForm(t *testing.T) {
	router := newTestRouter(t)

	w := postForm(t, router, "/register", url.Values{
		"name":           {"Alice"},
		"email":          {"alice@example.com"},
		"password":       {"password123"},
		"password_again": {"different"},
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Пароли не совпадают") {
		t.Error("mismatch message not rendered")
	}

	registerUser(t, router, "Alice", "alice@example.com")
	w = postForm(t, router, "/register", url.Values{
		"name":           {"Alice Again"},
		"email":          {"alice@example.com"},
		"password":       {"password123"},
		"password_again": {"password123"},
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate email status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Такой пользователь уже есть") {
		t.Error("duplicate email message not rendered")
	}
}

func TestLoginRequiredRedirects(t *testing.T) {
	router := newTestRouter(t)

	w := get(t, router, "/items/new", "")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("anonymous /items/new: status %d, location %q", w.Code, w.Header().Get("Location"))
	}
}

// The central scenario: user A's private item renders for A, is denied
// to user B with the distinct access message, and a missing id stays a
// plain not-found.
func TestPrivateItemVisibility(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com")
	registerUser(t, router, "Bob", "bob@example.com")
	aliceCookie := loginUser(t, router, "alice@example.com")
	bobCookie := loginUser(t, router, "bob@example.com")

	itemPath := createItem(t, router, aliceCookie, "секретная новость", true)

	w := get(t, router, itemPath, aliceCookie)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "секретная новость") {
		t.Errorf("owner view: status %d", w.Code)
	}

	w = get(t, router, itemPath, bobCookie)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-owner view: status %d, want 403", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Доступ запрещён") {
		t.Error("access-denied message not rendered")
	}

	w = get(t, router, itemPath, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("anonymous view: status %d, want 403", w.Code)
	}

	w = get(t, router, "/items/99999", bobCookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing item: status %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Запись не найдена") {
		t.Error("not-found message not rendered")
	}
}

func TestFeedFiltersPrivateItems(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com")
	aliceCookie := loginUser(t, router, "alice@example.com")

	createItem(t, router, aliceCookie, "публичная запись", false)
	createItem(t, router, aliceCookie, "приватная запись", true)

	w := get(t, router, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous feed: status %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "публичная запись") {
		t.Error("public item missing from anonymous feed")
	}
	if strings.Contains(body, "приватная запись") {
		t.Error("private item leaked into anonymous feed")
	}

	w = get(t, router, "/", aliceCookie)
	if !strings.Contains(w.Body.String(), "приватная запись") {
		t.Error("owner's private item missing from own feed")
	}
}

func TestEditDeleteAsNonOwnerLooksMissing(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com")
	registerUser(t, router, "Bob", "bob@example.com")
	aliceCookie := loginUser(t, router, "alice@example.com")
	bobCookie := loginUser(t, router, "bob@example.com")

	// Public on purpose: ownership, not privacy, gates mutation.
	itemPath := createItem(t, router, aliceCookie, "правь меня", false)

	w := get(t, router, itemPath+"/edit", bobCookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("non-owner edit form: status %d, want 404", w.Code)
	}

	w = postForm(t, router, itemPath+"/edit", url.Values{
		"title":   {"hacked"},
		"content": {"hacked"},
	}, bobCookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("non-owner edit: status %d, want 404", w.Code)
	}

	w = postForm(t, router, itemPath+"/delete", nil, bobCookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("non-owner delete: status %d, want 404", w.Code)
	}

	// Still intact for the owner.
	w = get(t, router, itemPath, aliceCookie)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "правь меня") {
		t.Errorf("item damaged by non-owner attempts: status %d", w.Code)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com")
	cookie := loginUser(t, router, "alice@example.com")

	w := get(t, router, "/logout", cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("logout: status %d", w.Code)
	}

	w = get(t, router, "/items/new", cookie)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("session survived logout: status %d", w.Code)
	}
}

// ---- item API ----

func apiToken(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123"}`, email)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("token: status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Token
}

func apiRequest(t *testing.T, router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type itemPayload struct {
	ID          uint   `json:"id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	UserID      uint   `json:"user_id"`
	IsPrivate   bool   `json:"is_private"`
	CreatedDate string `json:"created_date"`
	OwnerName   string `json:"owner_name"`
}

func TestAPIRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com")
	token := apiToken(t, router, "alice@example.com")

	w := apiRequest(t, router, http.MethodPost, "/api/items",
		`{"kind":"recipe","title":"борщ","content":"свёкла","is_private":false}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"success":"OK"`) {
		t.Errorf("create body = %s", w.Body.String())
	}

	w = apiRequest(t, router, http.MethodGet, "/api/items", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var list struct {
		Items []itemPayload `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("list has %d items", len(list.Items))
	}
	created := list.Items[0]

	w = apiRequest(t, router, http.MethodGet, fmt.Sprintf("/api/items/%d", created.ID), "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status %d", w.Code)
	}
	var single struct {
		Item itemPayload `json:"item"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &single); err != nil {
		t.Fatal(err)
	}
	if single.Item.Title != "борщ" || single.Item.Content != "свёкла" || single.Item.IsPrivate {
		t.Errorf("round-trip mismatch: %+v", single.Item)
	}
	if single.Item.OwnerName != "Alice" {
		t.Errorf("owner_name = %q", single.Item.OwnerName)
	}
}

func TestAPINotFoundMessage(t *testing.T) {
	router := newTestRouter(t)

	w := apiRequest(t, router, http.MethodGet, "/api/items/42", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "item 42 not found") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAPIVisibility(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com")
	registerUser(t, router, "Bob", "bob@example.com")
	aliceToken := apiToken(t, router, "alice@example.com")
	bobToken := apiToken(t, router, "bob@example.com")

	w := apiRequest(t, router, http.MethodPost, "/api/items",
		`{"title":"секрет","content":"тсс","is_private":true}`, aliceToken)
	if w.Code != http.StatusOK {
		t.Fatalf("create: status %d", w.Code)
	}

	// Listing: owner sees it, others and anonymous callers do not.
	for _, tc := range []struct {
		name  string
		token string
		want  int
	}{
		{"owner", aliceToken, 1},
		{"other user", bobToken, 0},
		{"anonymous", "", 0},
	} {
		w = apiRequest(t, router, http.MethodGet, "/api/items", "", tc.token)
		var list struct {
			Items []itemPayload `json:"items"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
			t.Fatal(err)
		}
		if len(list.Items) != tc.want {
			t.Errorf("%s sees %d items, want %d", tc.name, len(list.Items), tc.want)
		}
	}

	w = apiRequest(t, router, http.MethodGet, "/api/items/1", "", bobToken)
	if w.Code != http.StatusForbidden || !strings.Contains(w.Body.String(), "access denied") {
		t.Errorf("non-owner get: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestAPIDeleteRequiresOwnership(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com")
	registerUser(t, router, "Bob", "bob@example.com")
	aliceToken := apiToken(t, router, "alice@example.com")
	bobToken := apiToken(t, router, "bob@example.com")

	w := apiRequest(t, router, http.MethodPost, "/api/items",
		`{"title":"моё","content":"текст","is_private":false}`, aliceToken)
	if w.Code != http.StatusOK {
		t.Fatalf("create: status %d", w.Code)
	}

	w = apiRequest(t, router, http.MethodDelete, "/api/items/1", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous delete: status %d, want 401", w.Code)
	}

	// Non-owner delete is the same 404 as a missing id.
	w = apiRequest(t, router, http.MethodDelete, "/api/items/1", "", bobToken)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "item 1 not found") {
		t.Errorf("non-owner delete: status %d, body %s", w.Code, w.Body.String())
	}

	w = apiRequest(t, router, http.MethodDelete, "/api/items/1", "", aliceToken)
	if w.Code != http.StatusOK {
		t.Errorf("owner delete: status %d, body %s", w.Code, w.Body.String())
	}

	w = apiRequest(t, router, http.MethodGet, "/api/items/1", "", aliceToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted item still readable: status %d", w.Code)
	}
}

func TestAPICreateRejectsForeignUserID(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com")
	registerUser(t, router, "Bob", "bob@example.com")
	bobToken := apiToken(t, router, "bob@example.com")

	w := apiRequest(t, router, http.MethodPost, "/api/items",
		`{"title":"t","content":"c","is_private":false,"user_id":1}`, bobToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}

	w = apiRequest(t, router, http.MethodPost, "/api/items",
		`{"title":"t","content":"c","is_private":false}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create: status %d, want 401", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	w := get(t, router, "/healthz", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz: status %d, body %s", w.Code, w.Body.String())
	}
}
