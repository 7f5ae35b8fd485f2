package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ### Start - fixed configs (no change)
// Every value is sent requestsPerValue times; the expected counts below depend on them.
const (
	requestsPerValue = 50
)

var (
	validValues   = []string{"2", "5000", "200000", "  42", "2.9"}
	invalidValues = []string{"", "1", "200001", "abc", "-5", "<script>"}
	clientHeaders = []string{"1.2.3.4, 5.6.7.8", "9.9.9.9", ""}
)

// ### End - fixed configs

var auditLinePattern = regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}: [^ ]* \([^)]*\) (\d+|invalid request)$`)

type request struct {
	value        string
	forwardedFor string
	valid        bool
}

// main runs the e2e scenario: 001_concurrent_dispatch
//
// It fires valid and invalid generate requests concurrently at a running
// server and then checks the audit log written by that server.
//
// What it tests:
//   - GET /generate answers 202 for counts in [2, 200000] and 400 otherwise
//   - exactly one audit line per request, valid or not
//   - concurrent appends never interleave: every line is well formed
//
// The server must be configured with a generator command that exits quickly
// (for example generator.command=true) and an audit path matching auditPath.
func main() {
	// these configs can be changed to run the scenario
	baseURL := "http://localhost:8080" // Base URL of the galaxy-datagen server
	parallel := 16                     // Number of concurrent requests
	auditPath := ".tmp/log.txt"        // Audit log path relative to project root
	wantCleanAuditLog := true          // If true, truncate the audit log before running

	projectRoot, err := findProjectRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	auditFile := filepath.Join(projectRoot, auditPath)

	if wantCleanAuditLog {
		fmt.Printf("Truncating audit log: %s\n", auditFile)
		if err := os.Truncate(auditFile, 0); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "WARNING: Failed to truncate audit log: %v\n", err)
		}
	}

	requests := buildRequests()

	fmt.Println("Starting e2e scenario: 001_concurrent_dispatch")
	fmt.Printf("BASE_URL: %s\n", baseURL)
	fmt.Printf("PARALLEL: %d\n", parallel)
	fmt.Printf("AUDIT_PATH: %s\n", auditFile)
	fmt.Printf("TOTAL_REQUESTS: %d\n", len(requests))
	fmt.Println()

	client := &http.Client{Timeout: 10 * time.Second}
	workerChan := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	var accepted, rejected, unexpected int64

	for _, req := range requests {
		wg.Add(1)
		workerChan <- struct{}{}

		go func(r request) {
			defer wg.Done()
			defer func() { <-workerChan }()

			status, err := sendGenerate(client, baseURL, r)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: request %q failed: %v\n", r.value, err)
				atomic.AddInt64(&unexpected, 1)
				return
			}

			switch {
			case r.valid && status == http.StatusAccepted:
				atomic.AddInt64(&accepted, 1)
			case !r.valid && status == http.StatusBadRequest:
				atomic.AddInt64(&rejected, 1)
			default:
				fmt.Fprintf(os.Stderr, "ERROR: request %q answered %d\n", r.value, status)
				atomic.AddInt64(&unexpected, 1)
			}
		}(req)
	}
	wg.Wait()

	dispatchedLines, invalidLines, malformedLines, err := countAuditLines(auditFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to read audit log: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Statistics ===")
	fmt.Printf("Accepted request: %d\n", accepted)
	fmt.Printf("Rejected request: %d\n", rejected)
	fmt.Printf("Unexpected response: %d\n", unexpected)
	fmt.Printf("Dispatched audit lines: %d\n", dispatchedLines)
	fmt.Printf("Invalid audit lines: %d\n", invalidLines)
	fmt.Printf("Malformed audit lines: %d\n", malformedLines)

	wantAccepted := int64(len(validValues) * len(clientHeaders) * requestsPerValue)
	wantRejected := int64(len(invalidValues) * len(clientHeaders) * requestsPerValue)
	if unexpected > 0 || accepted != wantAccepted || rejected != wantRejected ||
		dispatchedLines != wantAccepted || invalidLines != wantRejected || malformedLines > 0 {
		fmt.Fprintf(os.Stderr, "ERROR: want %d accepted and %d rejected requests with one well formed audit line each\n",
			wantAccepted, wantRejected)
		os.Exit(1)
	}

	fmt.Println("Scenario completed successfully")
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find go.mod, run from the project root")
		}
		dir = parent
	}
}

func buildRequests() []request {
	requests := make([]request, 0, (len(validValues)+len(invalidValues))*len(clientHeaders)*requestsPerValue)
	for round := 0; round < requestsPerValue; round++ {
		for _, header := range clientHeaders {
			for _, v := range validValues {
				requests = append(requests, request{value: v, forwardedFor: header, valid: true})
			}
			for _, v := range invalidValues {
				requests = append(requests, request{value: v, forwardedFor: header, valid: false})
			}
		}
	}
	return requests
}

func sendGenerate(client *http.Client, baseURL string, r request) (int, error) {
	query := url.Values{}
	if r.value != "" {
		query.Set("num_particles", r.value)
	}

	req, err := http.NewRequest(http.MethodGet, baseURL+"/generate?"+query.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Remote-User", "e2e")
	if r.forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", r.forwardedFor)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func countAuditLines(path string) (dispatched, invalid, malformed int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case !auditLinePattern.MatchString(line):
			malformed++
		case strings.HasSuffix(line, " invalid request"):
			invalid++
		default:
			dispatched++
		}
	}
	return dispatched, invalid, malformed, scanner.Err()
}
