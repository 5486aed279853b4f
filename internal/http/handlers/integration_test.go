package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/lfca/church-admin-be/internal/auth"
	"github.com/lfca/church-admin-be/internal/cache"
	"github.com/lfca/church-admin-be/internal/middleware"
	"github.com/lfca/church-admin-be/internal/session"
	"github.com/lfca/church-admin-be/internal/storage/postgres"
)

// TestAPIIntegration exercises register/login and the income write-through
// path against a live Postgres database.
func TestAPIIntegration(t *testing.T) {
	if os.Getenv("RUN_API_INTEGRATION") != "true" {
		t.Skip("set RUN_API_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	entityCache := cache.New(store)
	if err := entityCache.Init(ctx); err != nil {
		t.Fatalf("init cache: %v", err)
	}

	provider := auth.NewProvider(store)
	sessions := session.NewStore(ctx, provider)
	defer sessions.Close()

	tokens := auth.NewTokenManager("integration-secret", "church-admin-backend", time.Hour)

	mux := http.NewServeMux()
	protect := func(next http.HandlerFunc) http.HandlerFunc {
		wrapped := middleware.Authenticate(tokens, next)
		return func(w http.ResponseWriter, r *http.Request) { wrapped.ServeHTTP(w, r) }
	}
	NewAuthHandler(sessions, store, tokens).Register(mux)
	NewFinanceHandler(entityCache).Register(mux, protect)

	ts := httptest.NewServer(mux)
	defer ts.Close()

	email := fmt.Sprintf("apitest_%d@example.com", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	postJSON(t, ts.URL+"/auth/register", map[string]string{
		"email":     email,
		"password":  password,
		"full_name": "API Test",
	}, http.StatusCreated, "")

	body := postJSON(t, ts.URL+"/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, http.StatusOK, "")

	var loginEnvelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &loginEnvelope); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginEnvelope.Data.Token == "" {
		t.Fatal("login response missing token")
	}

	// A fresh signup holds the member role, which may not record income.
	postJSON(t, ts.URL+"/finance", map[string]string{
		"category": "Tithe",
		"amount":   "250.50",
		"currency": "LRD",
	}, http.StatusForbidden, loginEnvelope.Data.Token)

	t.Logf("registered %s and verified finance gating via live DB", email)
}

func postJSON(t *testing.T, url string, payload map[string]string, wantStatus int, token string) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s status = %d, want %d (%s)", url, resp.StatusCode, wantStatus, buf.String())
	}
	return buf.Bytes()
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
