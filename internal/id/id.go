package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New returns a random identifier for a stored record.
func New() string {
	return uuid.NewString()
}

// FormatJournalNumber returns a journal number like "JE-202501-0001".
func FormatJournalNumber(date time.Time, seq int) string {
	return fmt.Sprintf("JE-%04d%02d-%04d", date.Year(), int(date.Month()), seq)
}

// ParseJournalNumber parses "JE-202501-0001" into year, month, seq.
func ParseJournalNumber(number string) (year, month, seq int, err error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 || parts[0] != "JE" || len(parts[1]) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid journal number format: %q", number)
	}

	year, err = strconv.Atoi(parts[1][:4])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in journal number %q: %w", number, err)
	}

	month, err = strconv.Atoi(parts[1][4:])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in journal number %q: %w", number, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in journal number %q: %w", number, err)
	}

	return year, month, seq, nil
}

// NextJournalSeq returns the next sequence for the month of date given the
// numbers already issued. Unparseable numbers are ignored.
func NextJournalSeq(numbers []string, date time.Time) int {
	maxSeq := 0
	for _, n := range numbers {
		y, m, seq, err := ParseJournalNumber(n)
		if err != nil || y != date.Year() || m != int(date.Month()) {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}
