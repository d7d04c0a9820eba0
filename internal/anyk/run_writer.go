package anyk

import (
	"fmt"
	"io"
)

// WriteRun streams result as a TREC-format run: one line per result,
// "topic_id Q0 primary_key rank rsv run_name", optionally suffixed
// with "(ID:doc_id->rsv)" when includeInternalIDs is set (grounded on
// the original run_export_trec unittest's output format). rank starts
// at 1. result must already be sorted (Sort/GetFirst/GetNext).
func WriteRun(w io.Writer, topicID string, result *Processor, runName string, includeInternalIDs bool) error {
	rank := 0
	for r, ok := result.GetFirst(); ok; r, ok = result.GetNext() {
		rank++
		if _, err := fmt.Fprintf(w, "%s Q0 %s %d %d %s", topicID, r.PrimaryKey, rank, r.RSV, runName); err != nil {
			return err
		}
		if includeInternalIDs {
			if _, err := fmt.Fprintf(w, "(ID:%d->%d)", r.DocID, r.RSV); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
