package domain

import (
	"fmt"
	"strings"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "asc" or "desc" (case-insensitive). Empty means desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SortDesc):
		return SortDesc, nil
	case string(SortAsc):
		return SortAsc, nil
	}
	return "", fmt.Errorf("sort must be 'asc' or 'desc': %w", ErrBadRequest)
}
