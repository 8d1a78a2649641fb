//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"
)

// The stack under test must have a seeded menu (SEED_FILE) and Postgres
// backed storage for the storefront when E2E_RESTART_STOREFRONT is set.
var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

func TestSystem_E2E_OrderWithDB(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	client := &http.Client{Timeout: 5 * time.Second, Jar: jar}

	email := fmt.Sprintf("diner_%d_%d@example.com", time.Now().Unix(), rand.Intn(100000))
	pass := "Password123!"

	doJSON(t, client, http.MethodPost, baseURL+"/auth/register", map[string]any{
		"email":    email,
		"name":     "Diner",
		"password": pass,
	}, nil, 201)

	var loginResp struct {
		AccessToken string `json:"access_token"`
	}
	doJSON(t, client, http.MethodPost, baseURL+"/auth/login", map[string]any{
		"email":    email,
		"password": pass,
	}, &loginResp, 200)
	if loginResp.AccessToken == "" {
		t.Fatalf("empty access_token")
	}

	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	doJSON(t, client, http.MethodGet, baseURL+"/menu", nil, &page, 200)
	if len(page.Items) == 0 {
		t.Fatalf("expected a seeded menu")
	}
	id := page.Items[0].ID

	doJSON(t, client, http.MethodPost, baseURL+"/menu/"+id+"/quantity", map[string]any{"delta": 2}, nil, 200)

	var cart struct {
		ItemCount int  `json:"item_count"`
		Empty     bool `json:"empty"`
	}
	doJSON(t, client, http.MethodGet, baseURL+"/cart", nil, &cart, 200)
	if cart.ItemCount != 2 {
		t.Fatalf("item_count=%d want 2", cart.ItemCount)
	}

	if os.Getenv("E2E_RESTART_STOREFRONT") == "1" {
		restartContainer(t, ctx, "storefront")
		waitReady(t, ctx, baseURL+"/readyz")
		doJSON(t, client, http.MethodGet, baseURL+"/cart", nil, &cart, 200)
		if cart.ItemCount != 2 {
			t.Fatalf("cart lost across restart: item_count=%d", cart.ItemCount)
		}
	}

	doJSON(t, client, http.MethodPost, baseURL+"/checkout", nil, nil, 202)

	deadline := time.Now().Add(30 * time.Second)
	for {
		var st struct {
			State string `json:"state"`
		}
		doJSON(t, client, http.MethodGet, baseURL+"/checkout", nil, &st, 200)
		if st.State == "success" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("checkout never succeeded, last state=%q", st.State)
		}
		time.Sleep(500 * time.Millisecond)
	}

	doJSON(t, client, http.MethodGet, baseURL+"/cart", nil, &cart, 200)
	if !cart.Empty {
		t.Fatalf("cart not cleared after payment")
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
