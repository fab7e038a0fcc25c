package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type invoiceItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type invoicePayload struct {
	BillingAddress string        `json:"billingAddress"`
	Items          []invoiceItem `json:"items"`
	TaxRate        float64       `json:"taxRate"`
	Discount       float64       `json:"discount"`
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type authResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

type LoadTestConfig struct {
	BaseURL           string
	RequestsPerSecond int
	DurationSeconds   int
	ConcurrentWorkers int
	Phone             string
	Password          string
}

// Stats separates number-allocation conflicts from other failures; a burst of creates on one
// store is exactly what exercises the invoice number retry loop.
type Stats struct {
	successCount  atomic.Int64
	conflictCount atomic.Int64
	errorCount    atomic.Int64
	responseTimes []float64
	mu            sync.Mutex
}

func (s *Stats) addResponseTime(duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responseTimes = append(s.responseTimes, duration)
}

func (s *Stats) getResponseTimes() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	times := make([]float64, len(s.responseTimes))
	copy(times, s.responseTimes)
	return times
}

func postJSON(client *http.Client, url, token string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return client.Do(req)
}

// authenticate logs in, registering the store first when the phone is unknown.
func authenticate(client *http.Client, config LoadTestConfig) (string, error) {
	creds := credentials{Phone: config.Phone, Password: config.Password}
	body, _ := json.Marshal(creds)

	resp, err := postJSON(client, config.BaseURL+"/api/auth/login", "", body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		creds.Name = "Load Test Store"
		body, _ = json.Marshal(creds)
		resp, err = postJSON(client, config.BaseURL+"/api/auth/register", "", body)
		if err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("auth failed with %d: %s", resp.StatusCode, raw)
	}
	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Data.Token, nil
}

func sendRequest(client *http.Client, url, token string, payload []byte, stats *Stats) {
	start := time.Now()

	resp, err := postJSON(client, url, token, payload)
	if err != nil {
		stats.errorCount.Add(1)
		stats.addResponseTime(time.Since(start).Seconds())
		return
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)
	stats.addResponseTime(time.Since(start).Seconds())

	switch resp.StatusCode {
	case http.StatusCreated:
		stats.successCount.Add(1)
	case http.StatusConflict:
		stats.conflictCount.Add(1)
	default:
		stats.errorCount.Add(1)
	}
}

func worker(client *http.Client, url, token string, payload []byte, stats *Stats, jobs <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	for range jobs {
		sendRequest(client, url, token, payload, stats)
	}
}

// percentile expects sorted input.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func main() {
	config := LoadTestConfig{
		BaseURL:           strings.TrimRight(getEnvOrDefault("TARGET_URL", "http://localhost:8080"), "/"),
		RequestsPerSecond: getEnvIntOrDefault("REQUESTS_PER_SECOND", 200),
		DurationSeconds:   getEnvIntOrDefault("DURATION_SECONDS", 30),
		ConcurrentWorkers: getEnvIntOrDefault("CONCURRENT_WORKERS", 50),
		Phone:             getEnvOrDefault("STORE_PHONE", "9000000000"),
		Password:          getEnvOrDefault("STORE_PASSWORD", "loadtest"),
	}

	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        config.ConcurrentWorkers,
			MaxIdleConnsPerHost: config.ConcurrentWorkers,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: 60 * time.Second,
	}

	token, err := authenticate(client, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not authenticate: %v\n", err)
		os.Exit(1)
	}

	payloadBytes, err := json.Marshal(invoicePayload{
		BillingAddress: "12 Market Road",
		Items: []invoiceItem{
			{Name: "Widget", Quantity: 2, UnitPrice: 100},
			{Name: "Bolt", Quantity: 12, UnitPrice: 0.35},
		},
		TaxRate:  18,
		Discount: 10,
	})
	if err != nil {
		panic(err)
	}
	url := config.BaseURL + "/api/invoice"

	fmt.Println("Starting load test...")
	fmt.Printf("Target: %s\n", url)
	fmt.Printf("Total requests: %d\n", config.RequestsPerSecond*config.DurationSeconds)
	fmt.Printf("Target RPS: %d\n", config.RequestsPerSecond)
	fmt.Printf("Concurrent workers: %d\n", config.ConcurrentWorkers)
	fmt.Printf("Duration: %d seconds\n", config.DurationSeconds)
	fmt.Println(strings.Repeat("-", 50))

	stats := &Stats{}
	jobs := make(chan struct{}, config.RequestsPerSecond)

	var wg sync.WaitGroup
	for i := 0; i < config.ConcurrentWorkers; i++ {
		wg.Add(1)
		go worker(client, url, token, payloadBytes, stats, jobs, &wg)
	}

	startTime := time.Now()
	for i := 0; i < config.DurationSeconds; i++ {
		batchStart := time.Now()
		for j := 0; j < config.RequestsPerSecond; j++ {
			jobs <- struct{}{}
		}

		success := stats.successCount.Load()
		conflicts := stats.conflictCount.Load()
		errors := stats.errorCount.Load()
		fmt.Printf("[%ds] Completed: %d | Created: %d | Conflicts: %d | Errors: %d\n",
			i+1, success+conflicts+errors, success, conflicts, errors)

		if elapsed := time.Since(batchStart); elapsed < time.Second {
			time.Sleep(time.Second - elapsed)
		}
	}

	close(jobs)
	wg.Wait()
	duration := time.Since(startTime).Seconds()

	success := stats.successCount.Load()
	conflicts := stats.conflictCount.Load()
	errors := stats.errorCount.Load()
	total := success + conflicts + errors

	times := stats.getResponseTimes()
	sort.Float64s(times)
	var avg float64
	for _, t := range times {
		avg += t
	}
	if len(times) > 0 {
		avg /= float64(len(times))
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("LOAD TEST RESULTS")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Duration: %.2f seconds\n", duration)
	fmt.Printf("Total requests: %d\n", total)
	fmt.Printf("Created: %d\n", success)
	fmt.Printf("Number conflicts (409): %d\n", conflicts)
	fmt.Printf("Failed: %d\n", errors)
	if total > 0 {
		fmt.Printf("Success rate: %.2f%%\n", float64(success)/float64(total)*100)
	}
	fmt.Printf("\nActual RPS: %.2f\n", float64(total)/duration)
	fmt.Printf("\nResponse times:\n")
	fmt.Printf("  Average: %.2f ms\n", avg*1000)
	fmt.Printf("  P50: %.2f ms\n", percentile(times, 0.50)*1000)
	fmt.Printf("  P95: %.2f ms\n", percentile(times, 0.95)*1000)
	fmt.Printf("  P99: %.2f ms\n", percentile(times, 0.99)*1000)
	if len(times) > 0 {
		fmt.Printf("  Min: %.2f ms\n", times[0]*1000)
		fmt.Printf("  Max: %.2f ms\n", times[len(times)-1]*1000)
	}
}
