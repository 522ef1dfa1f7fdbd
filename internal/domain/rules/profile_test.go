package rules

import (
	"errors"
	"testing"
)

func TestValidateName(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: "Олег", want: "Олег"},
		{name: "trims spaces", input: "  Аня  ", want: "Аня"},
		{name: "two runes minimum", input: "Ян", want: "Ян"},
		{name: "one rune rejected", input: "Я", wantErr: ErrNameLength},
		{name: "spaces only rejected", input: "   ", wantErr: ErrNameLength},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateName(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("unexpected error: %v", err)
			}
			if err == nil && got != tc.want {
				t.Fatalf("unexpected name: %q", got)
			}
		})
	}
}

func TestValidateAge(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{name: "lower bound", input: "16", want: 16},
		{name: "upper bound", input: "100", want: 100},
		{name: "trims spaces", input: " 25 ", want: 25},
		{name: "below range", input: "15", wantErr: ErrAgeRange},
		{name: "above range", input: "101", wantErr: ErrAgeRange},
		{name: "not a number", input: "двадцать", wantErr: ErrAgeNotANum},
		{name: "empty", input: "", wantErr: ErrAgeNotANum},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateAge(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("unexpected error: %v", err)
			}
			if err == nil && got != tc.want {
				t.Fatalf("unexpected age: %d", got)
			}
		})
	}
}

func TestValidateBio(t *testing.T) {
	if _, err := ValidateBio("коротко"); err != nil {
		t.Fatalf("expected bio to pass: %v", err)
	}
	if _, err := ValidateBio("нет"); !errors.Is(err, ErrBioLength) {
		t.Fatalf("expected ErrBioLength, got %v", err)
	}
}

func TestValidatePhoto(t *testing.T) {
	if _, err := ValidatePhoto("AgACAgIAAxkBAAIB"); err != nil {
		t.Fatalf("expected photo id to pass: %v", err)
	}
	if _, err := ValidatePhoto("  "); !errors.Is(err, ErrPhotoNeeded) {
		t.Fatalf("expected ErrPhotoNeeded, got %v", err)
	}
}
