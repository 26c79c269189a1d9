package valueobjects

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an insight.
//
//	new -> viewed -> implemented | dismissed
//	new -> implemented | dismissed
//
// implemented and dismissed are terminal; nothing moves back to new.
type Status string

const (
	StatusNew         Status = "new"
	StatusViewed      Status = "viewed"
	StatusImplemented Status = "implemented"
	StatusDismissed   Status = "dismissed"
)

var transitions = map[Status][]Status{
	StatusNew:    {StatusViewed, StatusImplemented, StatusDismissed},
	StatusViewed: {StatusImplemented, StatusDismissed},
}

// ParseStatus parses a status name
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("status must be one of: new, viewed, implemented, dismissed")
	}
	return st, nil
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusViewed, StatusImplemented, StatusDismissed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusImplemented || s == StatusDismissed
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Re-applying the current status is allowed and is a no-op.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
