package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 50

	// MinSearchTokenLen is the shortest free-text token that participates in
	// matching; shorter tokens are dropped rather than rejected.
	MinSearchTokenLen = 2
)

// DocumentFilter is the full optional-filter surface of a document search.
// Zero values mean "not filtered".
type DocumentFilter struct {
	TypeID          string
	GeneralID       string
	InternalID      string
	Confidentiality Confidentiality
	Term            string
	UploaderID      string
	MimeType        string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	UpdatedFrom     *time.Time
	UpdatedTo       *time.Time
	SizeMin         *int64
	SizeMax         *int64
	DownloadsMin    *int64
	DownloadsMax    *int64
}

// IsZero reports whether no filter is set at all.
func (f DocumentFilter) IsZero() bool {
	return f == DocumentFilter{}
}

// SortOrder names a document field from the sort allow-list. Unknown fields
// fall back to createdAt descending at query-build time, silently.
type SortOrder struct {
	Field      string
	Descending bool
}

func DefaultSort() SortOrder {
	return SortOrder{Field: "createdAt", Descending: true}
}

type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize clamps the page size into [1, MaxPerPage] (default DefaultPerPage)
// and forces the page number to at least 1.
func (p PageRequest) Normalize() PageRequest {
	out := p
	if out.Page < 1 {
		out.Page = 1
	}
	switch {
	case out.PerPage == 0:
		out.PerPage = DefaultPerPage
	case out.PerPage < 1:
		out.PerPage = 1
	case out.PerPage > MaxPerPage:
		out.PerPage = MaxPerPage
	}
	return out
}

// DocumentPage bundles one page of results with paging metadata.
type DocumentPage struct {
	Items    []Document `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PerPage  int        `json:"per_page"`
	LastPage int        `json:"last_page"`
}

// SearchTokens splits a free-text term on whitespace and keeps tokens of at
// least MinSearchTokenLen runes. An empty result means the term applies no
// filtering at all.
func SearchTokens(term string) []string {
	var tokens []string
	for _, tok := range strings.Fields(term) {
		if utf8.RuneCountInString(tok) < MinSearchTokenLen {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
