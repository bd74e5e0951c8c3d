package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"minichat-backend/internal/errs"
)

// Bounds for the number of latest messages returned per chat.
const (
	DefaultLimit = 20
	MinLimit     = 1
	MaxLimit     = 100
)

const limitParam = "limit"

// ParseLimit resolves the raw "limit" query value. present reports whether the
// parameter appeared in the query at all; an absent parameter yields
// DefaultLimit while a present but empty one is rejected.
func ParseLimit(raw string, present bool) (int, error) {
	if !present {
		return DefaultLimit, nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, rangeError()
		}
		return 0, errs.InvalidParameter(limitParam, "Query parameter 'limit' must be an integer.")
	}
	if err := CheckLimit(v); err != nil {
		return 0, err
	}
	return v, nil
}

// CheckLimit reports whether v lies within [MinLimit, MaxLimit].
func CheckLimit(v int) error {
	if v < MinLimit || v > MaxLimit {
		return rangeError()
	}
	return nil
}

func rangeError() error {
	return errs.InvalidParameter(limitParam,
		fmt.Sprintf("Query parameter 'limit' must be in range %d <= limit <= %d.", MinLimit, MaxLimit))
}
