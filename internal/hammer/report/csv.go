// Package report renders run results: the one-line CSV record, the
// human-readable console summary and JSON or YAML documents.
package report

import (
	"fmt"
	"io"

	"github.com/wesleyorama2/lockhammer/internal/hammer/metrics"
)

// CSVHeader names the fields of CSVLine.
const CSVHeader = "threads, coresUtilized, nsPerAccess, nsAccessRate, avgDepth"

// CSVLine formats r as "threads, cores, ns/access, access rate, depth".
func CSVLine(r *metrics.RunResult) string {
	return fmt.Sprintf("%d, %f, %f, %f, %f",
		r.Threads,
		r.CoresUtilized,
		r.NsPerAccess,
		r.NsAccessRate,
		r.AvgDepth,
	)
}

// WriteCSV writes CSVLine(r) and a newline to w.
func WriteCSV(w io.Writer, r *metrics.RunResult) error {
	_, err := fmt.Fprintln(w, CSVLine(r))
	return err
}
