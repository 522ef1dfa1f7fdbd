package ui

const (
	ButtonBrowse  = "Смотреть анкеты"
	ButtonProfile = "Моя анкета"
	ButtonEdit    = "Редактировать анкету"
	ButtonSupport = "Поддержка"
	ButtonLike    = "❤️"
	ButtonPass    = "👎"
	ButtonBack    = "⬅️"
	ButtonCancel  = "Отменить"
	ButtonDelete  = "Удалить анкету"
	ButtonHide    = "Скрыть анкету"
	ButtonShow    = "Показать анкету"

	ButtonGenderMale   = "Парень"
	ButtonGenderFemale = "Девушка"
	ButtonPrefMale     = "Парни"
	ButtonPrefFemale   = "Девушки"
	ButtonPrefAny      = "Всё равно"

	// Shown while editing, the other fields offer the stored value itself.
	ButtonKeepPhoto = "Оставить текущее фото"
)

func MainMenu() [][]string {
	return [][]string{
		{ButtonBrowse},
		{ButtonProfile, ButtonEdit},
		{ButtonSupport},
	}
}

func BrowseMenu() [][]string {
	return [][]string{
		{ButtonLike, ButtonPass, ButtonBack},
	}
}

func CancelMenu() [][]string {
	return [][]string{
		{ButtonCancel},
	}
}

func GenderMenu() [][]string {
	return [][]string{
		{ButtonGenderMale, ButtonGenderFemale},
		{ButtonCancel},
	}
}

func PreferenceMenu() [][]string {
	return [][]string{
		{ButtonPrefMale, ButtonPrefFemale},
		{ButtonPrefAny},
		{ButtonCancel},
	}
}
