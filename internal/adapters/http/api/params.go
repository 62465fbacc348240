package api

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/fplpredict/internal/domain/model"
)

var (
	errPosition = errors.New("position must be one of all, GKP, DEF, MID, FWD")
	errBudget   = errors.New("budget must be a number of at least 0.1")
)

// parseRound reads "round"; empty means current.
func parseRound(q url.Values, current, maxRound int) (int, error) {
	raw := strings.TrimSpace(q.Get("round"))
	if raw == "" {
		return current, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxRound {
		return 0, fmt.Errorf("round must be an integer in 1..%d", maxRound)
	}
	return n, nil
}

func parsePosition(q url.Values) (model.Position, error) {
	p, err := model.ParsePosition(q.Get("position"))
	if err != nil {
		return model.PositionAny, errPosition
	}
	return p, nil
}

// budgetEpsilon absorbs binary error in v*10, e.g. 0.7*10 = 7.000000000000001
// and 4.6*10 = 45.99999999999999.
const budgetEpsilon = 1e-9

// parseBudget reads "budget" in currency units and returns the largest cost
// in tenths that does not exceed it. Empty means no ceiling; a budget below
// the cheapest representable cost is rejected since 0 disables the ceiling.
func parseBudget(q url.Values) (int, error) {
	raw := strings.TrimSpace(q.Get("budget"))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, errBudget
	}
	tenths := math.Floor(v*10 + budgetEpsilon)
	if tenths < 1 || tenths > math.MaxInt32 {
		return 0, errBudget
	}
	return int(tenths), nil
}

// parseLimit reads key; empty means def.
func parseLimit(q url.Values, key string, def, maxLimit int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, fmt.Errorf("%s must be an integer in 1..%d", key, maxLimit)
	}
	return n, nil
}
