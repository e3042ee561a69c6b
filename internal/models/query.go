package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinQueryLength is the shortest accepted explore query, in characters.
const MinQueryLength = 2

// ExploreQuery represents an explore request against external providers.
type ExploreQuery struct {
	Query    string        `json:"q"`
	Category MediaCategory `json:"type"`
}

// Validate trims the query and checks it is long enough to search with.
// Category validity is checked by the router, which owns the category table.
func (q *ExploreQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if utf8.RuneCountInString(q.Query) < MinQueryLength {
		return fmt.Errorf("query must be at least %d characters", MinQueryLength)
	}
	if q.Category == "" {
		return fmt.Errorf("type is required")
	}
	return nil
}
