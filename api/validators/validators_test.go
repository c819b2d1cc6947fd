package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
)

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"  mains  ", 0, "mains"},
		{"title<script>", 0, "titlescript"},
		{"a;b'c\"d\\e", 0, "abcde"},
		{"tab\tand\nnewline", 0, "tabandnewline"},
		{"abcdefgh", 4, "abcd"},
		{"", 10, ""},
	}

	for _, tc := range cases {
		if got := SanitizeString(tc.in, tc.maxLen); got != tc.want {
			t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/menu-items?page=3", nil)
	got, err := ParseQueryInt(r, "page", 1, 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}

	// Absent parameter falls back to the default.
	got, err = ParseQueryInt(r, "per_page", 25, 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 25 {
		t.Fatalf("expected default 25, got %d", got)
	}

	r = httptest.NewRequest("GET", "/menu-items?page=zero", nil)
	if _, err := ParseQueryInt(r, "page", 1, 1, 100); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	r = httptest.NewRequest("GET", "/menu-items?page=101", nil)
	if _, err := ParseQueryInt(r, "page", 1, 1, 100); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestParseQueryDecimal(t *testing.T) {
	r := httptest.NewRequest("GET", "/menu-items?price_from=9.50", nil)
	value, err := ParseQueryDecimal(r, "price_from")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value == nil || value.String() != "9.5" {
		t.Fatalf("unexpected value %v", value)
	}

	value, err = ParseQueryDecimal(r, "price_to")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != nil {
		t.Fatalf("expected nil for absent parameter, got %v", value)
	}

	r = httptest.NewRequest("GET", "/menu-items?price_from=cheap", nil)
	if _, err := ParseQueryDecimal(r, "price_from"); err == nil {
		t.Fatal("expected error for malformed decimal")
	}
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Title string `json:"title" validate:"required"`
		Count int    `json:"count" validate:"min=1"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"Bruschetta","count":2}`))
	var dest payload
	if err := DecodeJSONBody(r, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Title != "Bruschetta" || dest.Count != 2 {
		t.Fatalf("unexpected payload %+v", dest)
	}

	// Unknown fields are rejected.
	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"x","count":1,"bogus":true}`))
	if err := DecodeJSONBody(r, &payload{}); err == nil {
		t.Fatal("expected error for unknown field")
	}

	// Validation failures name the offending json field.
	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"count":0}`))
	err := DecodeJSONBody(r, &payload{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(typed.Message(), "title") {
		t.Fatalf("expected message to name the field, got %q", typed.Message())
	}
}

func TestParsePathUUID(t *testing.T) {
	if _, err := ParsePathUUID("not-a-uuid", "menuItemId"); err == nil {
		t.Fatal("expected error for malformed uuid")
	}
	if _, err := ParsePathUUID(" 5f8a1a9e-0f1c-4f4e-9d38-0a8f3f3f2b11 ", "menuItemId"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
