package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// fmtPeriod formats a period with the export precision.
func fmtPeriod(v float64) string {
	return fmt.Sprintf("%.*f", schema.PeriodPlaces, v)
}

// fmtMetric formats a power or variability value with the export precision.
func fmtMetric(v float64) string {
	return fmt.Sprintf("%.*f", schema.MetricPlaces, v)
}

// fmtOptional formats an optional value, leaving absent values empty.
func fmtOptional(v *float64, format func(float64) string) string {
	if v == nil {
		return ""
	}
	return format(*v)
}

// fmtStellar formats a pass-through stellar attribute without changing its value.
func fmtStellar(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
