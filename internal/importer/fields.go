package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gnzdotmx/okane-track-sub000/internal/ledger"
)

// DateLayouts are tried in order; the first that parses wins. Day-first
// layouts precede month-first ones.
var DateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
	"01/02/2006",
}

// ExportDateLayout is the date format written by the exporter.
const ExportDateLayout = "2006-01-02"

var amountNoise = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", " ", "", " ", "")

// ParseAmount parses a positive monetary amount, ignoring currency symbols,
// spaces and thousands separators. The decimal separator is always a dot;
// a comma must be followed by a group of three digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := amountNoise.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, errors.New("amount is required")
	}
	if !thousandsGrouped(cleaned) {
		return decimal.Zero, fmt.Errorf("invalid amount %q: use a dot as the decimal separator", raw)
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(cleaned, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than zero, got %q", raw)
	}
	return amount, nil
}

// thousandsGrouped reports whether every comma in s starts a three-digit
// group that ends at a comma, a dot or the end of s.
func thousandsGrouped(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ',' {
			continue
		}
		end := i + 4
		if end > len(s) {
			return false
		}
		for _, c := range s[i+1 : end] {
			if c < '0' || c > '9' {
				return false
			}
		}
		if end < len(s) && s[end] != ',' && s[end] != '.' {
			return false
		}
	}
	return true
}

// ParseDate parses a transaction date and returns it in UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("date is required")
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// ParseYesNo reports whether a reimbursable cell reads as affirmative
// (SI, SÍ or YES in any case).
func ParseYesNo(raw string) bool {
	switch ledger.Fold(raw) {
	case "si", "yes":
		return true
	}
	return false
}

// FormatYesNo is the inverse of ParseYesNo used by the exporter.
func FormatYesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

// RowError describes why a CSV row was rejected.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

// Fingerprint hashes the identifying parts of a row. Two rows with equal
// parts share a fingerprint.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		_, _ = io.WriteString(h, p)
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
