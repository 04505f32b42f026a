// Command smoke-payments runs an end-to-end check against a running API:
// sign up, store a payment method, pick a foundation, create a rule and
// read the payment history back. It does not trigger a real payment.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const demoKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func main() {
	base := os.Getenv("GIVECHAIN_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 10 * time.Second}

	name := fmt.Sprintf("smoke-%d", rand.New(rand.NewSource(time.Now().UnixNano())).Int63())

	var signup struct {
		Token  string `json:"token"`
		UserID int64  `json:"user_id"`
	}
	mustCall(client, http.MethodPost, base+"/v1/users", "", map[string]any{
		"name":     name,
		"password": "smoke-password",
	}, http.StatusCreated, &signup)
	if signup.Token == "" {
		log.Fatal("signup returned no token")
	}

	var method struct {
		ID      int64  `json:"id"`
		Address string `json:"address"`
	}
	mustCall(client, http.MethodPost, base+"/v1/payments/methods", signup.Token, map[string]any{
		"type":        "ETH",
		"private_key": demoKey,
	}, http.StatusCreated, &method)
	if method.Address == "" {
		log.Fatal("method has no derived address")
	}

	var foundation struct {
		ID int64 `json:"id"`
	}
	mustCall(client, http.MethodPost, base+"/v1/foundations", signup.Token, map[string]any{
		"name":            "Smoke Test Fund " + name,
		"description":     "created by smoke-payments",
		"payment_address": "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	}, http.StatusCreated, &foundation)

	var rule struct {
		ID int64 `json:"id"`
	}
	mustCall(client, http.MethodPost, base+"/v1/payments/rules", signup.Token, map[string]any{
		"payment_method_id": method.ID,
		"foundation_id":     foundation.ID,
		"amount":            "0.001",
	}, http.StatusCreated, &rule)

	var history struct {
		Items []any `json:"items"`
	}
	mustCall(client, http.MethodGet, base+"/v1/payments/history", signup.Token, nil, http.StatusOK, &history)
	if len(history.Items) != 0 {
		log.Fatalf("fresh user already has %d payments", len(history.Items))
	}

	mustCall(client, http.MethodPost, base+"/v1/auth/logout", signup.Token, nil, http.StatusOK, nil)

	fmt.Printf("✅ payments smoke test passed: user=%s method=%d rule=%d\n", name, method.ID, rule.ID)
}

func mustCall(client *http.Client, httpMethod, url, token string, body any, wantStatus int, out any) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequest(httpMethod, url, &buf)
	if err != nil {
		log.Fatalf("build request %s: %v", url, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", httpMethod, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		log.Fatalf("%s %s: status %d, want %d", httpMethod, url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
