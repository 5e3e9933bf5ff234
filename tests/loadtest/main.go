package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const (
	defaultBaseURL = "http://127.0.0.1:8080"
	numWorkers     = 50
	testDuration   = 10 * time.Second
	numApps        = 20
	numDays        = 365
)

var baseURL = defaultBaseURL

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	statuses  map[int]int64
	latencies []time.Duration
}

func main() {
	if url := os.Getenv("ECO_LOADTEST_URL"); url != "" {
		baseURL = strings.TrimRight(url, "/")
	}
	fmt.Println("=== EcoMetrics Load Test ===")
	fmt.Printf("Target: %s\n", baseURL)
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Applications: %d | Days: %d\n\n", numApps, numDays)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			os.Exit(1)
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	apps, err := createApps(numApps)
	if err != nil {
		fmt.Printf("FAILED: %s\n", err)
		os.Exit(1)
	}
	today := time.Now().UTC()

	// Phase 1: concurrent ingestion, many workers race for the same days
	fmt.Println("\n--- Phase 1: Ingest (POST /applications/{app}/metrics) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doIngest(rng, apps, today)
	})

	// Phase 2: Mixed read/write load
	fmt.Println("\n--- Phase 2: Mixed load (40% ingest, 60% reads and certificates) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		app := apps[rng.Intn(len(apps))]
		r := rng.Float64()
		switch {
		case r < 0.40:
			return doIngest(rng, apps, today)
		case r < 0.60:
			return doGet("GET /metrics", "/applications/"+app+"/metrics?per_page=30")
		case r < 0.80:
			return doGet("GET /metrics/stats", "/applications/"+app+"/metrics/stats")
		case r < 0.90:
			return doGet("GET /certificates", "/applications/"+app+"/certificates")
		default:
			return doIssue(app)
		}
	})

	// Phase 3: Read-heavy load
	fmt.Println("\n--- Phase 3: Read-heavy load (5% ingest, 95% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		app := apps[rng.Intn(len(apps))]
		r := rng.Float64()
		switch {
		case r < 0.05:
			return doIngest(rng, apps, today)
		case r < 0.40:
			return doGet("GET /metrics/stats", "/applications/"+app+"/metrics/stats")
		case r < 0.70:
			return doGet("GET /certificates", "/applications/"+app+"/certificates")
		case r < 0.85:
			return doGet("GET /certificate", "/applications/"+app+"/certificate")
		default:
			return doGet("GET /application", "/applications/"+app)
		}
	})
}

func createApps(n int) ([]string, error) {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		data, _ := json.Marshal(map[string]string{"name": fmt.Sprintf("loadtest-%d", i)})
		resp, err := httpClient.Post(baseURL+"/applications", "application/json", bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		var body struct {
			Application struct {
				ID string `json:"id"`
			} `json:"application"`
		}
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("creating application: status %d", resp.StatusCode)
		}
		ids = append(ids, body.Application.ID)
	}
	return ids, nil
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{statuses: make(map[int]int64)}
				allResults[r.endpoint] = s
			}
			s.count++
			s.statuses[r.status]++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s  %s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99", "Statuses")
	fmt.Println("  " + strings.Repeat("-", 100))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s  %s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)),
			fmtStatuses(s.statuses))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 100))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

// doIngest posts a random day for a random application. A 409 is the
// expected answer once the day is taken and does not count as an error.
func doIngest(rng *rand.Rand, apps []string, today time.Time) result {
	app := apps[rng.Intn(len(apps))]
	body := map[string]interface{}{
		"date":           today.AddDate(0, 0, -rng.Intn(numDays)).Format("2006-01-02"),
		"requests_count": rng.Intn(100000),
		"storage_gb":     rng.Float64() * 50,
		"cpu_hours":      rng.Float64() * 24,
	}

	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/applications/"+app+"/metrics", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /metrics", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /metrics", resp.StatusCode, lat, resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict}
}

// doIssue may legitimately answer 400 while an application has no recent
// metrics.
func doIssue(app string) result {
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/applications/"+app+"/issue-certificate", "application/json", nil)
	lat := time.Since(start)
	if err != nil {
		return result{"POST /issue-certificate", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /issue-certificate", resp.StatusCode, lat, resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusBadRequest}
}

func doGet(endpoint, path string) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	ok := resp.StatusCode == http.StatusOK || (endpoint == "GET /certificate" && resp.StatusCode == http.StatusNotFound)
	return result{endpoint, resp.StatusCode, lat, !ok}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func fmtStatuses(statuses map[int]int64) string {
	codes := make([]int, 0, len(statuses))
	for code := range statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%d:%d", code, statuses[code]))
	}
	return strings.Join(parts, " ")
}
