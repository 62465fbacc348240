package model

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownPosition is returned by ParsePosition.
var ErrUnknownPosition = errors.New("unknown position")

// Defaults applied when a string numeric cannot be parsed.
const (
	DefaultForm          = 0.0
	DefaultPointsPerGame = 0.0
	// DefaultOwnership treats an unknown ownership as fully owned so the
	// player earns neither a differential nor a surprise bonus.
	DefaultOwnership = 100.0
)

// ParseDecimal parses raw as a finite float. On failure it returns def and
// false.
func ParseDecimal(raw string, def float64) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def, false
	}
	return v, true
}
