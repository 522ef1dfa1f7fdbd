package enums

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	default:
		return false
	}
}

func (g Gender) String() string {
	return string(g)
}

type GenderPreference string

const (
	PreferenceMale   GenderPreference = "male"
	PreferenceFemale GenderPreference = "female"
	PreferenceAny    GenderPreference = "any"
)

func (p GenderPreference) Valid() bool {
	switch p {
	case PreferenceMale, PreferenceFemale, PreferenceAny:
		return true
	default:
		return false
	}
}

func (p GenderPreference) String() string {
	return string(p)
}

// Allows reports whether a profile of the given gender fits the
// preference. An unset preference rejects nothing.
func (p GenderPreference) Allows(g Gender) bool {
	return p == "" || p == PreferenceAny || string(p) == string(g)
}
