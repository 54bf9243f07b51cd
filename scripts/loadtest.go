package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

type LoadTestConfig struct {
	BaseURL       string
	TotalRequests int
	Concurrency   int
	ItemID        string
}

type Stats struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalLatency    int64
	MinLatency      int64
	MaxLatency      int64
	Errors          sync.Map
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Service base URL")
	requests := flag.Int("requests", 1000, "Total number of requests")
	concurrency := flag.Int("concurrency", 10, "Number of parallel requests")
	operation := flag.String("operation", "menu", "Operation type: menu, quote, delivery, checkout, mixed")
	itemID := flag.String("item", "", "Menu item id used by quote/checkout operations")
	flag.Parse()

	config := LoadTestConfig{
		BaseURL:       *baseURL,
		TotalRequests: *requests,
		Concurrency:   *concurrency,
		ItemID:        *itemID,
	}

	fmt.Printf("Starting load test\n")
	fmt.Printf("URL: %s\n", config.BaseURL)
	fmt.Printf("Operation: %s\n", *operation)
	fmt.Printf("Requests: %d\n", config.TotalRequests)
	fmt.Printf("Concurrency: %d\n\n", config.Concurrency)

	stats := &Stats{
		MinLatency: int64(^uint64(0) >> 1), // max int64
	}

	startTime := time.Now()

	switch *operation {
	case "menu":
		run(config, stats, func(c *http.Client) error { return getJSON(c, config.BaseURL+"/menu") })
	case "quote":
		run(config, stats, func(c *http.Client) error { return postJSON(c, config.BaseURL+"/cart/quote", quoteBody(config.ItemID)) })
	case "delivery":
		run(config, stats, func(c *http.Client) error {
			return postJSON(c, config.BaseURL+"/delivery/quote", map[string]any{"lat": 37.77, "lon": -122.42})
		})
	case "checkout":
		run(config, stats, func(c *http.Client) error { return postJSON(c, config.BaseURL+"/checkout", checkoutBody(config.ItemID)) })
	case "mixed":
		var i int64
		run(config, stats, func(c *http.Client) error {
			switch atomic.AddInt64(&i, 1) % 3 {
			case 0:
				return postJSON(c, config.BaseURL+"/cart/quote", quoteBody(config.ItemID))
			case 1:
				return postJSON(c, config.BaseURL+"/delivery/quote", map[string]any{"lat": 37.77, "lon": -122.42})
			default:
				return getJSON(c, config.BaseURL+"/menu")
			}
		})
	default:
		fmt.Printf("Unknown operation: %s\n", *operation)
		return
	}

	printStats(stats, time.Since(startTime))
}

func quoteBody(itemID string) map[string]any {
	return map[string]any{
		"fulfillment": "pickup",
		"lines":       []map[string]any{{"item_id": itemID, "quantity": 2}},
		"tip":         map[string]any{"kind": "percent", "value": 15},
	}
}

func checkoutBody(itemID string) map[string]any {
	body := quoteBody(itemID)
	body["customer_name"] = "Load Tester"
	body["customer_email"] = "loadtest@example.com"
	return body
}

func run(config LoadTestConfig, stats *Stats, op func(*http.Client) error) {
	jobs := make(chan struct{}, config.TotalRequests)
	for i := 0; i < config.TotalRequests; i++ {
		jobs <- struct{}{}
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < config.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 30 * time.Second}
			for range jobs {
				start := time.Now()
				err := op(client)
				record(stats, time.Since(start), err)
			}
		}()
	}
	wg.Wait()
}

func record(stats *Stats, latency time.Duration, err error) {
	atomic.AddInt64(&stats.TotalRequests, 1)
	lat := latency.Microseconds()
	atomic.AddInt64(&stats.TotalLatency, lat)

	for {
		min := atomic.LoadInt64(&stats.MinLatency)
		if lat >= min || atomic.CompareAndSwapInt64(&stats.MinLatency, min, lat) {
			break
		}
	}
	for {
		max := atomic.LoadInt64(&stats.MaxLatency)
		if lat <= max || atomic.CompareAndSwapInt64(&stats.MaxLatency, max, lat) {
			break
		}
	}

	if err != nil {
		atomic.AddInt64(&stats.FailedRequests, 1)
		stats.Errors.Store(err.Error(), true)
		return
	}
	atomic.AddInt64(&stats.SuccessRequests, 1)
}

func getJSON(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func postJSON(client *http.Client, url string, body map[string]any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func printStats(stats *Stats, elapsed time.Duration) {
	total := atomic.LoadInt64(&stats.TotalRequests)
	success := atomic.LoadInt64(&stats.SuccessRequests)
	failed := atomic.LoadInt64(&stats.FailedRequests)

	fmt.Printf("\nResults\n")
	fmt.Printf("Total:    %d\n", total)
	fmt.Printf("Success:  %d\n", success)
	fmt.Printf("Failed:   %d\n", failed)
	fmt.Printf("Elapsed:  %v\n", elapsed)
	if total > 0 {
		avg := time.Duration(atomic.LoadInt64(&stats.TotalLatency)/total) * time.Microsecond
		fmt.Printf("Avg latency: %v\n", avg)
		fmt.Printf("Min latency: %v\n", time.Duration(atomic.LoadInt64(&stats.MinLatency))*time.Microsecond)
		fmt.Printf("Max latency: %v\n", time.Duration(atomic.LoadInt64(&stats.MaxLatency))*time.Microsecond)
		fmt.Printf("Throughput:  %.1f req/s\n", float64(total)/elapsed.Seconds())
	}

	stats.Errors.Range(func(key, _ any) bool {
		fmt.Printf("Error: %s\n", key)
		return true
	})
}
