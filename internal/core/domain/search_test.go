package domain

import (
	"reflect"
	"testing"
)

func TestSearchTokensDropsShortTokens(t *testing.T) {
	cases := []struct {
		name string
		term string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   \t ", nil},
		{"single short token", "a", nil},
		{"mixed lengths", "a quality ok b report", []string{"quality", "ok", "report"}},
		{"cyrillic two runes count as two", "ок б", []string{"ок"}},
		{"extra whitespace collapsed", "  annual   report  ", []string{"annual", "report"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SearchTokens(tc.term)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SearchTokens(%q) = %v, want %v", tc.term, got, tc.want)
			}
		})
	}
}

func TestPageRequestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"zero value gets defaults", PageRequest{}, PageRequest{Page: 1, PerPage: DefaultPerPage}},
		{"negative page clamped to first", PageRequest{Page: -3, PerPage: 10}, PageRequest{Page: 1, PerPage: 10}},
		{"per page above max clamped", PageRequest{Page: 2, PerPage: 500}, PageRequest{Page: 2, PerPage: MaxPerPage}},
		{"per page at max untouched", PageRequest{Page: 2, PerPage: MaxPerPage}, PageRequest{Page: 2, PerPage: MaxPerPage}},
		{"negative per page clamped to one", PageRequest{Page: 1, PerPage: -1}, PageRequest{Page: 1, PerPage: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDocumentFilterIsZero(t *testing.T) {
	if !(DocumentFilter{}).IsZero() {
		t.Fatal("empty filter should be zero")
	}
	if (DocumentFilter{Term: "x"}).IsZero() {
		t.Fatal("filter with a term is not zero")
	}
	min := int64(1)
	if (DocumentFilter{SizeMin: &min}).IsZero() {
		t.Fatal("filter with a size bound is not zero")
	}
}

func TestValidationErrorUnwrapsToInvalidInput(t *testing.T) {
	verr := NewValidationError()
	verr.Add("title", "title is required")

	if !IsKind(verr, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput kind, got %v", verr)
	}
	fields := FieldErrors(verr)
	if fields["title"] != "title is required" {
		t.Fatalf("FieldErrors = %v", fields)
	}
}
