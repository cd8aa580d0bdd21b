// Package main provides a performance benchmarking tool for the starspin CLI.
// It generates synthetic samples of several sizes, then measures batch run times
// for each worker count, running each test multiple times, treating the first
// successful cached run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - starspin binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Scratch directory for generated samples, light curves and cache files
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Stars       int
	Workers     int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	SampleSizes []int
	WorkerSets  []int
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     10 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		SampleSizes: []int{50, 200, 1000},
		WorkerSets:  []int{1, 4, 8},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the starspin binary exists and the work dir is usable
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("starspin"); err != nil {
		return fmt.Errorf("starspin binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// generateSample writes a sample of n stars with sinusoidal light curves under dir.
// Periods cycle through 0.7 to 12 days so both estimators get exercised.
func generateSample(dir string, n int) (string, error) {
	dataDir := filepath.Join(dir, "lightcurves")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}

	var sample strings.Builder
	sample.WriteString("TIC_ID,Teff,logg,Tmag\n")
	for i := range n {
		id := strconv.Itoa(100000 + i)
		fmt.Fprintf(&sample, "%s,%d,4.4,%.1f\n", id, 4000+i%3000, 8+float64(i%50)/10)

		period := 0.7 + math.Mod(float64(i)*0.37, 11.3)
		var lc strings.Builder
		lc.WriteString("time,flux,flux_err\n")
		for j := range 27 * 720 { // 2 minute cadence
			t := float64(j) / 720
			fmt.Fprintf(&lc, "%.6f,%.4f,0.5\n", t, 1000*(1+0.005*math.Sin(2*math.Pi*t/period)))
		}
		if err := os.WriteFile(filepath.Join(dataDir, id+".csv"), []byte(lc.String()), 0o644); err != nil {
			return "", err
		}
	}

	samplePath := filepath.Join(dir, "sample.csv")
	return samplePath, os.WriteFile(samplePath, []byte(sample.String()), 0o644)
}

// runBenchmarks executes all benchmark tests across configured sample sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: sizes %v, workers %v, %v timeout, no-cache: %d runs, cache: %d runs\n",
		config.SampleSizes, config.WorkerSets, config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, size := range config.SampleSizes {
		dir := filepath.Join(config.WorkDir, fmt.Sprintf("sample_%d", size))
		fmt.Printf("Generating sample of %d stars in %s\n", size, dir)
		samplePath, err := generateSample(dir, size)
		if err != nil {
			fmt.Printf("Warning: failed to generate sample: %v\n", err)
			continue
		}

		for _, workers := range config.WorkerSets {
			results = append(results, runBenchmarkSuite(config, dir, samplePath, size, workers))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one sample size and worker count
func runBenchmarkSuite(config BenchmarkConfig, dir, samplePath string, size, workers int) BenchmarkResult {
	fmt.Printf("Running %d stars with %d workers\n", size, workers)

	// Each suite starts from an empty cache
	_ = os.Remove(filepath.Join(dir, ".starspin_cache.db"))

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, dir, samplePath, size, workers, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Stars:       size,
		Workers:     workers,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a starspin batch multiple times with the given cache backend and returns cold time and warm times.
// Light curves are served through the command provider so the cache has a retrieval to save.
func runBenchmark(config BenchmarkConfig, dir, samplePath string, size, workers int, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"run",
		"--sample", samplePath,
		"--max-stars", strconv.Itoa(size),
		"--workers", strconv.Itoa(workers),
		"--provider", "command",
		"--fetch-command", "cat " + filepath.Join(dir, "lightcurves", "{id}.csv"),
		"--cache-backend", cacheBackend,
		"--output", "csv",
		"--output-file", os.DevNull,
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("starspin", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(), "HOME="+dir)

		done := make(chan error, 1)
		if err := cmd.Start(); err != nil {
			continue
		}
		go func() { done <- cmd.Wait() }()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("starspin_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"stars", "workers", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{strconv.Itoa(result.Stars), strconv.Itoa(result.Workers), result.NoCacheTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %5d stars, %d workers: No-cache: %s, Cold: %s, Warm: %s\n",
			result.Stars, result.Workers, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
