package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
	"github.com/olekukonko/tablewriter"
)

var inspectionHeader = []string{"identifier", "flag", "final_period", "control", "plot", "error"}

// WriteInspectionReport outputs the stars of an inspection batch and their plot locations.
func WriteInspectionReport(report schema.InspectionReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, inspectionHeader, func(cw *csv.Writer) error {
				for _, item := range report.Items {
					if err := cw.Write(inspectionRecord(item, contract.GetPlainFlag(item.Flag))); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInspectionTable(w, report, cfg.UseColors)
		}, "Wrote table")
	}
}

func inspectionRecord(item schema.InspectionItem, flag string) []string {
	return []string{
		item.Identifier,
		flag,
		fmtPeriod(item.FinalPeriod),
		strconv.FormatBool(item.Control),
		item.Plot,
		item.Error,
	}
}

func writeInspectionTable(w io.Writer, report schema.InspectionReport, useColors bool) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Identifier", "Flag", "P_final", "Control", "Plot", "Error"})
	data := make([][]string, 0, len(report.Items))
	for i, item := range report.Items {
		data = append(data, append([]string{strconv.Itoa(i + 1)}, inspectionRecord(item, flagText(item.Flag, useColors))...))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
