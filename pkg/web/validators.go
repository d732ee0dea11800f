package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

// gte returns a ParamValidator that checks if the argument is greater than or
// equal to the value captured in the closure.
func gte(valToCompareAgainst int64) ParamValidator {
	return func(argValue int64) bool {
		return argValue >= valToCompareAgainst
	}
}

// ParseOptionalGte reads an optional integer query parameter, falling back to
// def when absent and rejecting values below min.
func ParseOptionalGte(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def, min int64) (int64, bool) {
	return parseOptional(r, w, logger, key, def, gte(min))
}

func parseOptional(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def int64, pValidator ParamValidator) (int64, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil || !pValidator(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return intValue, true
}

// ParseOptionalFloat reads an optional float query parameter. A nil result
// with ok=true means the parameter was absent.
func ParseOptionalFloat(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string) (*float64, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, true
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return nil, false
	}
	return &floatValue, true
}
