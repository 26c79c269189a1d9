package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"insights-backend/pkg/common"
	pkgerrors "insights-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

// decodeBody parses a JSON body into v. An empty body leaves v untouched
// when optional is set.
func decodeBody(r *http.Request, v interface{}, optional bool) error {
	if r.Body == nil || r.Body == http.NoBody {
		if optional {
			return nil
		}
		return pkgerrors.NewValidationError("request body is required")
	}
	if err := common.ParseJSONBody(r, v, maxBodyBytes); err != nil {
		if errors.Is(err, io.EOF) && optional {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return pkgerrors.NewValidationError("request body is required")
		}
		return pkgerrors.NewValidationError(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// queryInt reads an integer query parameter, returning def when absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.NewValidationError(fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

// queryBool reads a boolean query parameter; absent means false
func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.NewValidationError(fmt.Sprintf("%s must be true or false", name))
	}
	return b, nil
}

// queryIntList reads a comma separated list of integers
func queryIntList(r *http.Request, name string) ([]int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("%s must be a comma separated list of integers", name))
		}
		out = append(out, n)
	}
	return out, nil
}
