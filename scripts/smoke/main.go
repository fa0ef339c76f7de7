// Package main runs smoke checks against a running site API.
//
// It submits one contact form and one service inquiry, checks that an
// invalid service type is rejected, and confirms both lists contain the new
// records.
//
// Usage:
//
//	go run ./scripts/smoke [--api=URL] [--skip-writes]
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Result types
// ---------------------------------------------------------------------------

type checkResult struct {
	Name   string
	Pass   *bool // nil = skipped
	Detail string
}

type apiResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// ---------------------------------------------------------------------------
// Globals
// ---------------------------------------------------------------------------

var (
	flagAPI        string
	flagSkipWrites bool
	client         = &http.Client{Timeout: 15 * time.Second}
)

func init() {
	flag.StringVar(&flagAPI, "api", "http://localhost:8080", "Site API base URL")
	flag.BoolVar(&flagSkipWrites, "skip-writes", false, "Only run read-only checks")
}

func call(method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, strings.TrimRight(flagAPI, "/")+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}

func pass(ok bool) *bool { return &ok }

// ---------------------------------------------------------------------------
// Checks
// ---------------------------------------------------------------------------

func checkHealth() checkResult {
	status, body, err := call(http.MethodGet, "/health", nil)
	if err != nil {
		return checkResult{"health", pass(false), err.Error()}
	}
	var out map[string]string
	_ = json.Unmarshal(body, &out)
	if status != http.StatusOK || out["status"] != "ok" {
		return checkResult{"health", pass(false), fmt.Sprintf("HTTP %d %s", status, truncate(string(body), 80))}
	}
	return checkResult{"health", pass(true), "database=" + out["database"]}
}

func submit(name, path string, payload any) (checkResult, string) {
	status, body, err := call(http.MethodPost, path, payload)
	if err != nil {
		return checkResult{name, pass(false), err.Error()}, ""
	}
	var out apiResult
	if err := json.Unmarshal(body, &out); err != nil || status != http.StatusCreated || !out.Success {
		return checkResult{name, pass(false), fmt.Sprintf("HTTP %d %s", status, truncate(string(body), 80))}, ""
	}
	var rec struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(out.Data, &rec)
	if rec.ID == "" {
		return checkResult{name, pass(false), "response has no id"}, ""
	}
	return checkResult{name, pass(true), "id=" + rec.ID}, rec.ID
}

func checkRejectsInvalidServiceType() checkResult {
	name := "reject invalid service_type"
	status, body, err := call(http.MethodPost, "/api/service-inquiries", map[string]string{
		"service_type": "invalid",
		"email":        "a@b.com",
	})
	if err != nil {
		return checkResult{name, pass(false), err.Error()}
	}
	if status != http.StatusBadRequest || !strings.Contains(string(body), "Invalid service_type") {
		return checkResult{name, pass(false), fmt.Sprintf("HTTP %d %s", status, truncate(string(body), 80))}
	}
	return checkResult{name, pass(true), "HTTP 400"}
}

func checkListed(name, path, id string) checkResult {
	if id == "" {
		return checkResult{Name: name, Detail: "nothing submitted"}
	}
	status, body, err := call(http.MethodGet, path, nil)
	if err != nil {
		return checkResult{name, pass(false), err.Error()}
	}
	var out apiResult
	if err := json.Unmarshal(body, &out); err != nil || status != http.StatusOK || !out.Success {
		return checkResult{name, pass(false), fmt.Sprintf("HTTP %d %s", status, truncate(string(body), 80))}
	}
	var items []struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(out.Data, &items)
	if len(items) == 0 || items[0].ID != id {
		return checkResult{name, pass(false), fmt.Sprintf("newest of %d records is not %s", len(items), id)}
	}
	return checkResult{name, pass(true), fmt.Sprintf("%d records, newest first", len(items))}
}

// ---------------------------------------------------------------------------
// Report
// ---------------------------------------------------------------------------

func boolIcon(b *bool) string {
	if b == nil {
		return " -- "
	}
	if *b {
		return " ✅ "
	}
	return " ❌ "
}

func printReport(results []checkResult) int {
	fmt.Printf("\nSMOKE TEST REPORT: %s\n", flagAPI)
	fmt.Println(strings.Repeat("=", 80))

	failed := 0
	for _, r := range results {
		fmt.Printf("%s %-32s %s\n", boolIcon(r.Pass), r.Name, r.Detail)
		if r.Pass != nil && !*r.Pass {
			failed++
		}
	}
	fmt.Println(strings.Repeat("-", 80))
	if failed == 0 {
		fmt.Println("✅ ALL CHECKS PASSED")
	} else {
		fmt.Printf("❌ %d CHECKS FAILED\n", failed)
	}
	return failed
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	flag.Parse()

	results := []checkResult{checkHealth()}

	if flagSkipWrites {
		results = append(results,
			checkResult{Name: "submit contact", Detail: "skipped"},
			checkResult{Name: "submit service inquiry", Detail: "skipped"},
		)
	} else {
		stamp := time.Now().UTC().Format("20060102T150405")
		contactCheck, contactID := submit("submit contact", "/api/contact", map[string]string{
			"first_name":          "Smoke",
			"last_name":           "Test " + stamp,
			"email":               "smoke+" + stamp + "@sshrobotics.com",
			"project_type":        "robotics",
			"project_description": "Automated smoke check, safe to delete.",
		})
		inquiryCheck, inquiryID := submit("submit service inquiry", "/api/service-inquiries", map[string]string{
			"service_type": "automation",
			"email":        "smoke+" + stamp + "@sshrobotics.com",
			"message":      "Automated smoke check, safe to delete.",
		})
		results = append(results,
			contactCheck,
			inquiryCheck,
			checkListed("list contact submissions", "/api/contact-submissions", contactID),
			checkListed("list service inquiries", "/api/service-inquiries", inquiryID),
		)
	}
	results = append(results, checkRejectsInvalidServiceType())

	if printReport(results) > 0 {
		os.Exit(1)
	}
}
