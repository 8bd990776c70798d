// Package id formats and parses transaction identifiers. A transaction id
// doubles as the id of the detail log entry it creates, which makes reversal
// an exact lookup.
package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTxID returns a transaction ID like "2025-01-001".
func FormatTxID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// ParseTxID parses "2025-01-001" into year, month, seq.
func ParseTxID(id string) (year, month, seq int, err error) {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid transaction ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in transaction ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in transaction ID %q: %w", id, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in transaction ID %q: %w", id, err)
	}

	return year, month, seq, nil
}

// NextSeq returns the next free sequence for a year/month given existing ids.
// Malformed ids are skipped.
func NextSeq(ids []string, year, month int) int {
	maxSeq := 0
	for _, existing := range ids {
		y, m, seq, err := ParseTxID(existing)
		if err != nil || y != year || m != month {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}
