package common

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response sources reported in the envelope. They tell the dashboard whether
// the payload came from the capture service, the document store, or the
// built-in sample data.
const (
	SourceLive     = "live"
	SourceDatabase = "database"
	SourceMock     = "mock"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp string      `json:"timestamp"`
	Source    string      `json:"source,omitempty"`
	Meta      *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MetaInfo contains metadata about the response
type MetaInfo struct {
	RequestID  string          `json:"request_id,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// PaginationInfo contains offset/limit pagination details
type PaginationInfo struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// ResponseOption decorates an APIResponse before it is written
type ResponseOption func(*APIResponse)

// WithSource sets the provenance of the payload
func WithSource(source string) ResponseOption {
	return func(r *APIResponse) {
		r.Source = source
	}
}

// WithMessage sets a human readable message
func WithMessage(message string) ResponseOption {
	return func(r *APIResponse) {
		r.Message = message
	}
}

// WithPagination attaches pagination metadata
func WithPagination(p *PaginationInfo) ResponseOption {
	return func(r *APIResponse) {
		if r.Meta == nil {
			r.Meta = &MetaInfo{}
		}
		r.Meta.Pagination = p
	}
}

// WithRequestID attaches the request id
func WithRequestID(id string) ResponseOption {
	return func(r *APIResponse) {
		if id == "" {
			return
		}
		if r.Meta == nil {
			r.Meta = &MetaInfo{}
		}
		r.Meta.RequestID = id
	}
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}, opts ...ResponseOption) {
	response := APIResponse{
		Success:   status >= 200 && status < 300,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for _, opt := range opts {
		opt(&response)
	}

	write(w, status, response)
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondErrorWithDetails(w, status, code, message, nil)
}

// RespondErrorWithDetails sends an error response with additional details
func RespondErrorWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	response := APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	write(w, status, response)
}

func write(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// StandardErrorCodes defines common error codes
var StandardErrorCodes = struct {
	ValidationError    string
	NotFound           string
	Unauthorized       string
	Conflict           string
	InternalError      string
	BadRequest         string
	TooManyRequests    string
	ServiceUnavailable string
}{
	ValidationError:    "VALIDATION_ERROR",
	NotFound:           "NOT_FOUND",
	Unauthorized:       "UNAUTHORIZED",
	Conflict:           "CONFLICT",
	InternalError:      "INTERNAL_ERROR",
	BadRequest:         "BAD_REQUEST",
	TooManyRequests:    "TOO_MANY_REQUESTS",
	ServiceUnavailable: "SERVICE_UNAVAILABLE",
}

// ParseJSONBody parses JSON request body with size limit
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	return decoder.Decode(v)
}
