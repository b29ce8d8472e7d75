package types

import (
	"fmt"
	"strings"
)

// StatusFilter narrows the conversation list. The empty value and "all"
// both mean no filtering.
type StatusFilter string

const StatusFilterAll StatusFilter = "all"

var StatusFilters = []StatusFilter{
	StatusFilterAll,
	StatusFilter(SessionStatusActive),
	StatusFilter(SessionStatusTransferred),
	StatusFilter(SessionStatusClosed),
}

func ParseStatusFilter(raw string) (StatusFilter, error) {
	value := StatusFilter(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return StatusFilterAll, nil
	}
	for _, known := range StatusFilters {
		if value == known {
			return value, nil
		}
	}
	return "", fmt.Errorf("unknown status filter %q (want all|active|transferred|closed)", raw)
}

func (f StatusFilter) Normalize() StatusFilter {
	if f == "" {
		return StatusFilterAll
	}
	return f
}

// Status returns the status to send to the remote, or "" for no filter.
func (f StatusFilter) Status() SessionStatus {
	if f.Normalize() == StatusFilterAll {
		return ""
	}
	return SessionStatus(f)
}

// Next cycles through the known filters; used by the filter tab key.
func (f StatusFilter) Next() StatusFilter {
	current := f.Normalize()
	for i, known := range StatusFilters {
		if known == current {
			return StatusFilters[(i+1)%len(StatusFilters)]
		}
	}
	return StatusFilterAll
}
