package enums

type ProfileStatus string

const (
	ProfileStatusDraft  ProfileStatus = "draft"
	ProfileStatusActive ProfileStatus = "active"
	ProfileStatusHidden ProfileStatus = "hidden"
)

func (s ProfileStatus) Valid() bool {
	switch s {
	case ProfileStatusDraft, ProfileStatusActive, ProfileStatusHidden:
		return true
	default:
		return false
	}
}

func (s ProfileStatus) String() string {
	return string(s)
}
