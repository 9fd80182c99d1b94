package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medreza/honcho-loyalty-service/pkg/middleware"
)

// These tests run against a live server. Start it with the same JWT_SECRET
// and point LOYALTY_BASE_URL at it, e.g. http://localhost:8080.
func setup(t *testing.T) (string, []byte) {
	t.Helper()
	baseURL := os.Getenv("LOYALTY_BASE_URL")
	secret := os.Getenv("JWT_SECRET")
	if baseURL == "" || secret == "" {
		t.Skip("LOYALTY_BASE_URL and JWT_SECRET not set; skipping live server test")
	}
	return baseURL + "/api", []byte(secret)
}

func call(method, url string, secret []byte, userID, role string, body any) (*http.Response, error) {
	tok, err := middleware.IssueToken(secret, userID, role, time.Minute)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	return http.DefaultClient.Do(req)
}

func mustCall(t *testing.T, method, url string, secret []byte, userID, role string, body any) *http.Response {
	t.Helper()
	resp, err := call(method, url, secret, userID, role, body)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func seedUser(t *testing.T, api string, secret []byte, points int) string {
	t.Helper()
	userID := "user_" + uuid.NewString()

	resp := mustCall(t, http.MethodPost, api+"/admin/users", secret, "admin", middleware.RoleAdmin,
		map[string]any{"id": userID})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Failed to create user: status %d", resp.StatusCode)
	}

	resp = mustCall(t, http.MethodPost, api+"/admin/points/award", secret, "admin", middleware.RoleAdmin,
		map[string]any{"user_id": userID, "points": points})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Failed to award points: status %d", resp.StatusCode)
	}
	return userID
}

func TestConcurrency(t *testing.T) {
	api, secret := setup(t)

	t.Run("DoubleSpendAttack", func(t *testing.T) {
		userID := seedUser(t, api, secret, 100)
		requests := 20

		var (
			wg        sync.WaitGroup
			successes atomic.Int32
		)
		wg.Add(requests)
		for i := 0; i < requests; i++ {
			go func() {
				defer wg.Done()
				resp, err := call(http.MethodPost, api+"/points/redeem", secret, userID, middleware.RoleUser,
					map[string]any{"points": 60})
				if err != nil {
					t.Errorf("Redeem request failed: %v", err)
					return
				}
				resp.Body.Close()
				if resp.StatusCode == http.StatusCreated {
					successes.Add(1)
				}
			}()
		}
		wg.Wait()

		if successes.Load() != 1 {
			t.Errorf("Expected exactly 1 successful redemption, got %d", successes.Load())
		}

		resp := mustCall(t, http.MethodGet, api+"/points/balance", secret, userID, middleware.RoleUser, nil)
		defer resp.Body.Close()

		var balance struct {
			Available int `json:"available_points"`
			Redeemed  int `json:"redeemed_points"`
		}
		json.NewDecoder(resp.Body).Decode(&balance)

		if balance.Available != 40 {
			t.Errorf("Expected 40 available points, got %d", balance.Available)
		}
		if balance.Redeemed != 60 {
			t.Errorf("Expected 60 redeemed points, got %d", balance.Redeemed)
		}
	})

	t.Run("CouponCodeRace", func(t *testing.T) {
		code := fmt.Sprintf("RACE_%d", time.Now().UnixNano())
		users := make([]string, 5)
		for i := range users {
			users[i] = seedUser(t, api, secret, 50)
		}

		var (
			wg      sync.WaitGroup
			created atomic.Int32
		)
		wg.Add(len(users))
		for _, userID := range users {
			go func(userID string) {
				defer wg.Done()
				resp, err := call(http.MethodPost, api+"/coupons", secret, userID, middleware.RoleUser, map[string]any{
					"code":          code,
					"discount":      10,
					"discount_unit": "PERCENT",
					"points_cost":   20,
					"expires_at":    time.Now().Add(time.Hour).Format(time.RFC3339),
				})
				if err != nil {
					t.Errorf("Create coupon request failed: %v", err)
					return
				}
				resp.Body.Close()
				if resp.StatusCode == http.StatusCreated {
					created.Add(1)
				}
			}(userID)
		}
		wg.Wait()

		if created.Load() != 1 {
			t.Errorf("Expected exactly 1 coupon with code %s, got %d", code, created.Load())
		}
	})
}
