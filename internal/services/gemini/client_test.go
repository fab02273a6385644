package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsdesk/internal/services/gemini"
)

func TestGenerateReturnsFirstCandidateText(t *testing.T) {
	var captured struct {
		path   string
		apiKey string
		body   map[string]any
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.apiKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&captured.body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"ok\":true}"}]}}]}`))
	}))
	defer server.Close()

	client := gemini.NewClient(gemini.Config{APIKey: "secret", BaseURL: server.URL})
	payload, err := client.Generate(context.Background(), "gemini-2.0-flash", "system", "user prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if payload != `{"ok":true}` {
		t.Fatalf("unexpected payload: %q", payload)
	}

	if captured.path != "/models/gemini-2.0-flash:generateContent" {
		t.Fatalf("unexpected path: %s", captured.path)
	}
	if captured.apiKey != "secret" {
		t.Fatalf("api key header not set, got %q", captured.apiKey)
	}
	genCfg, ok := captured.body["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("generationConfig missing from request: %v", captured.body)
	}
	if genCfg["responseMimeType"] != "application/json" {
		t.Fatalf("expected JSON response mode, got %v", genCfg["responseMimeType"])
	}
}

func TestGenerateClassifiesQuotaStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := gemini.NewClient(gemini.Config{APIKey: "secret", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "gemini-2.0-flash", "", "prompt")
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !gemini.IsQuotaStatus(err) {
		t.Fatalf("expected quota classification, got %v", err)
	}
}

func TestGenerateSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad model","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client := gemini.NewClient(gemini.Config{APIKey: "secret", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "nope", "", "prompt")
	if err == nil {
		t.Fatal("expected error from API error payload")
	}
	if gemini.IsQuotaStatus(err) {
		t.Fatalf("API errors are not quota denials: %v", err)
	}
}

func TestGenerateRejectsEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := gemini.NewClient(gemini.Config{APIKey: "secret", BaseURL: server.URL})
	if _, err := client.Generate(context.Background(), "gemini-2.0-flash", "", "prompt"); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestGenerateValidatesInputs(t *testing.T) {
	client := gemini.NewClient(gemini.Config{APIKey: "secret"})
	if _, err := client.Generate(context.Background(), "", "", "prompt"); err == nil {
		t.Fatal("expected error for empty model")
	}
	if _, err := client.Generate(context.Background(), "gemini-2.0-flash", "", ""); err == nil {
		t.Fatal("expected error for empty prompt")
	}
	noKey := gemini.NewClient(gemini.Config{})
	if _, err := noKey.Generate(context.Background(), "gemini-2.0-flash", "", "prompt"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestCatalogOrderedCheapestFirst(t *testing.T) {
	catalog := gemini.Catalog()
	if len(catalog) != 4 {
		t.Fatalf("expected 4 models, got %d", len(catalog))
	}
	if catalog[0].Name != "gemini-2.0-flash-lite" {
		t.Fatalf("cheapest model must lead the catalog, got %s", catalog[0].Name)
	}
	for i := 1; i < len(catalog); i++ {
		if catalog[i].CostPerMTokIn < catalog[i-1].CostPerMTokIn {
			t.Fatalf("catalog not ordered by cost: %s before %s", catalog[i-1].Name, catalog[i].Name)
		}
	}

	// Catalog returns a copy; mutating it must not leak.
	catalog[0].Name = "mutated"
	if gemini.Catalog()[0].Name == "mutated" {
		t.Fatal("Catalog must return a defensive copy")
	}
}
