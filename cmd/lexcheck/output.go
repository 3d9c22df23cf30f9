package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dekarrin/lexcheck/analysis"
	"github.com/dekarrin/lexcheck/internal/config"
	"github.com/dekarrin/rezi"
)

type fileReport struct {
	File   string          `json:"file"`
	Report analysis.Report `json:"report"`
}

// writeReports writes every report to w in the given format. Text reports for
// more than one file are each preceded by a header naming the file. JSON
// output is a single report object for one file and an array of file/report
// objects for more. Binary output is a count followed by each file name and
// its rezi-encoded report.
func writeReports(w io.Writer, reports []fileReport, format string, width int) error {
	switch format {
	case config.FormatText:
		for i, fr := range reports {
			if len(reports) > 1 {
				if i > 0 {
					if _, err := io.WriteString(w, "\n"); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintf(w, "==> %s <==\n", fr.File); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, fr.Report.Render(width)); err != nil {
				return err
			}
		}
		return nil
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0].Report)
		}
		return enc.Encode(reports)
	case config.FormatBinary:
		data := rezi.EncInt(len(reports))
		for _, fr := range reports {
			data = append(data, rezi.EncString(fr.File)...)
			data = append(data, rezi.EncBinary(fr.Report)...)
		}
		_, err := w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// readBinaryReports decodes output written by writeReports in binary format.
func readBinaryReports(data []byte) ([]fileReport, error) {
	count, n, err := rezi.DecInt(data)
	if err != nil {
		return nil, fmt.Errorf("report count: %w", err)
	}
	data = data[n:]

	reports := make([]fileReport, count)
	for i := 0; i < count; i++ {
		reports[i].File, n, err = rezi.DecString(data)
		if err != nil {
			return nil, fmt.Errorf("report %d: file: %w", i, err)
		}
		data = data[n:]

		n, err = rezi.DecBinary(data, &reports[i].Report)
		if err != nil {
			return nil, fmt.Errorf("report %d: %w", i, err)
		}
		data = data[n:]
	}

	return reports, nil
}
