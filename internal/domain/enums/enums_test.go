package enums

import "testing"

func TestProfileStatusValid(t *testing.T) {
	for _, status := range []ProfileStatus{ProfileStatusDraft, ProfileStatusActive, ProfileStatusHidden} {
		if !status.Valid() {
			t.Fatalf("%s must be a valid status", status)
		}
	}
	for _, status := range []ProfileStatus{"", "banned", "Active"} {
		if status.Valid() {
			t.Fatalf("%q must not be a valid status", status)
		}
	}
}

func TestGenderValid(t *testing.T) {
	if !GenderMale.Valid() || !GenderFemale.Valid() {
		t.Fatalf("known genders must validate")
	}
	if Gender("").Valid() || Gender("other").Valid() {
		t.Fatalf("unknown gender must not validate")
	}
}

func TestPreferenceAllows(t *testing.T) {
	cases := []struct {
		pref   GenderPreference
		gender Gender
		want   bool
	}{
		{PreferenceAny, GenderMale, true},
		{PreferenceAny, GenderFemale, true},
		{PreferenceMale, GenderMale, true},
		{PreferenceMale, GenderFemale, false},
		{PreferenceFemale, GenderFemale, true},
		{PreferenceFemale, GenderMale, false},
		{"", GenderMale, true},
	}
	for _, tc := range cases {
		if got := tc.pref.Allows(tc.gender); got != tc.want {
			t.Fatalf("Allows(%q, %q) = %v, want %v", tc.pref, tc.gender, got, tc.want)
		}
	}
}
