package rules

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	NameMinLen = 2
	NameMaxLen = 64
	AgeMin     = 16
	AgeMax     = 100
	BioMinLen  = 5
	BioMaxLen  = 1024
)

var (
	ErrNameLength  = errors.New("name length out of range")
	ErrAgeNotANum  = errors.New("age is not a number")
	ErrAgeRange    = errors.New("age out of range")
	ErrBioLength   = errors.New("bio length out of range")
	ErrPhotoNeeded = errors.New("photo reference is required")
)

func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(name)
	if length < NameMinLen || length > NameMaxLen {
		return "", ErrNameLength
	}
	return name, nil
}

func ValidateAge(raw string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrAgeNotANum
	}
	return ValidateAgeValue(age)
}

func ValidateAgeValue(age int) (int, error) {
	if age < AgeMin || age > AgeMax {
		return 0, ErrAgeRange
	}
	return age, nil
}

func ValidateBio(raw string) (string, error) {
	bio := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(bio)
	if length < BioMinLen || length > BioMaxLen {
		return "", ErrBioLength
	}
	return bio, nil
}

func ValidatePhoto(fileID string) (string, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return "", ErrPhotoNeeded
	}
	return fileID, nil
}
