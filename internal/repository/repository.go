package repository // package repository provides typed access to the workbook tables

import (
	"strconv"
	"strings"
	"time"

	"github.com/jagatstore/jagat-backend/internal/store"
)

// timeLayout matches the timestamps the store has always carried
// (ISO 8601 with millisecond precision, UTC).
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// NextID returns max(id)+1 across the rows, or 1 for an empty table.
// Because every insert is a full load-mutate-rewrite of the table, this is
// only correct with a single writer; two concurrent writers can observe
// the same maximum and mint the same ID.  That constraint comes with the
// storage design and is accepted, not worked around here.
func NextID(rows []store.Row) int {
	max := 0
	for _, r := range rows {
		if id := atoi(r["id"]); id > max {
			max = id
		}
	}
	return max + 1
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
