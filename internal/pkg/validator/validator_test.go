package validator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"123e4567-e89b-12d3-a456-426614174000",
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"{0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b}",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}

	if bad, ok := AllValidUUIDs([]string{valid[0], "nope"}); ok || bad != "nope" {
		t.Errorf("AllValidUUIDs = (%q, %v), want (\"nope\", false)", bad, ok)
	}
}

func TestIsValidMonth(t *testing.T) {
	got, ok := IsValidMonth("2025-04")
	if !ok {
		t.Fatal("IsValidMonth(2025-04) = false, want true")
	}
	if want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("IsValidMonth(2025-04) = %v, want %v", got, want)
	}

	for _, s := range []string{"", "2025-4", "2025-13", "04-2025", "2025-04-01", "abcd-ef"} {
		if _, ok := IsValidMonth(s); ok {
			t.Errorf("IsValidMonth(%q) = true, want false", s)
		}
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"0712345678", "0112345678", "254712345678", "+254 712 345 678"}
	invalid := []string{"071234567", "0812345678", "255712345678", "abc", ""}
	for _, p := range valid {
		if !IsValidPhoneNumber(p) {
			t.Errorf("IsValidPhoneNumber(%q) = false, want true", p)
		}
	}
	for _, p := range invalid {
		if IsValidPhoneNumber(p) {
			t.Errorf("IsValidPhoneNumber(%q) = true, want false", p)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "month", Message: "is required"},
		{Field: "company_id", Message: "must be a valid UUID"},
	}
	if errs.Error() != "month: is required; company_id: must be a valid UUID" {
		t.Errorf("unexpected Error(): %s", errs.Error())
	}
	m := errs.ToMap()
	if m["month"] != "is required" || len(m) != 2 {
		t.Errorf("unexpected ToMap(): %v", m)
	}
}

func TestIsNonNegative(t *testing.T) {
	if !IsNonNegative(decimal.Zero) || IsNonNegative(decimal.NewFromInt(-1)) {
		t.Error("IsNonNegative mismatch")
	}
}

func TestIsValidDateTime(t *testing.T) {
	if _, ok := IsValidDateTime("2025-04-30T10:30:00+03:00"); !ok {
		t.Error("expected RFC3339 to be valid")
	}
	if _, ok := IsValidDateTime("2025-04-30"); ok {
		t.Error("expected bare date to be invalid")
	}
}
