package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/starspin/internal/parquet"
)

// ExecuteResultsExport writes every tracked run, result and skip to Parquet files
// named after outputFile.
func ExecuteResultsExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetResultStore()
	if store == nil {
		return errors.New("result store is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get result status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no result data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total star results: %d\n", status.TotalResults)
	fmt.Printf("Total skipped stars: %d\n", status.TotalSkips)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	results, err := store.GetAllResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve star results: %w", err)
	}
	skips, err := store.GetAllSkips()
	if err != nil {
		return fmt.Errorf("failed to retrieve skipped stars: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteFile(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	resultsFile := outputFile + ".results.parquet"
	if err := parquet.WriteFile(parquet.ConvertStarResultRecords(results), resultsFile); err != nil {
		return fmt.Errorf("failed to write star results: %w", err)
	}
	fmt.Printf("Exported %d star results to: %s\n", len(results), resultsFile)

	skipsFile := outputFile + ".skips.parquet"
	if err := parquet.WriteFile(parquet.ConvertSkipRecords(skips), skipsFile); err != nil {
		return fmt.Errorf("failed to write skipped stars: %w", err)
	}
	fmt.Printf("Exported %d skipped stars to: %s\n", len(skips), skipsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - Astropy tables")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
