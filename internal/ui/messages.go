package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/enums"
	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/model"
	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/rules"
)

const (
	Greeting    = "Привет! Давай создадим твою анкету."
	WelcomeBack = "С возвращением! Выбери действие."

	PromptName       = "Как тебя зовут?"
	PromptAge        = "Сколько тебе лет?"
	PromptGender     = "Ты парень или девушка?"
	PromptPreference = "Кто тебе интересен?"
	PromptBio        = "Расскажи немного о себе."
	PromptPhoto      = "Пришли своё фото."
	PromptConfirm    = "Всё верно?"

	ChooseFromKeyboard = "Выбери вариант на клавиатуре."

	ProfileSaved     = "Анкета сохранена! Теперь тебя видят другие."
	ProfileReset     = "Анкета сброшена. Начнём заново: " + PromptName
	ProfileDeleted   = "Анкета удалена."
	ProfileHidden    = "Анкета скрыта. Другие тебя не видят."
	ProfileShown     = "Анкета снова видна другим."
	ProfileMissing   = "Анкеты пока нет. Нажми «Редактировать анкету», чтобы создать её."
	EditRestart      = "Обновим анкету. " + PromptName
	DialogueCanceled = "Хорошо, вернулись в меню."

	BrowseEmpty    = "Анкеты закончились. Загляни позже или нажми «Смотреть анкеты», чтобы начать сначала."
	BrowseNotReady = "Сначала заполни анкету, потом можно смотреть других."

	LikeSaved    = "Лайк отправлен."
	LikeRepeated = "Ты уже лайкал эту анкету."

	UnknownInput = "Не понял. Выбери действие на клавиатуре."
	StorageError = "Что-то пошло не так, попробуй ещё раз."

	ConfirmYes  = "Да, всё верно"
	ConfirmEdit = "Заполнить заново"

	DeleteConfirm = "Точно удалить анкету?"
	DeleteYes     = "Да, удалить"
	DeleteNo      = "Нет, оставить"
)

func ValidationMessage(err error) string {
	switch {
	case errors.Is(err, rules.ErrNameLength):
		return fmt.Sprintf("Имя должно быть от %d до %d символов. Попробуй ещё раз.", rules.NameMinLen, rules.NameMaxLen)
	case errors.Is(err, rules.ErrAgeNotANum):
		return "Возраст нужно написать числом, например 25."
	case errors.Is(err, rules.ErrAgeRange):
		return fmt.Sprintf("Возраст должен быть от %d до %d лет.", rules.AgeMin, rules.AgeMax)
	case errors.Is(err, rules.ErrBioLength):
		return fmt.Sprintf("Расскажи о себе подробнее, хотя бы %d символов.", rules.BioMinLen)
	case errors.Is(err, rules.ErrPhotoNeeded):
		return "Нужна именно фотография. Пришли фото."
	default:
		return UnknownInput
	}
}

func GenderFromButton(text string) (enums.Gender, bool) {
	switch strings.TrimSpace(text) {
	case ButtonGenderMale:
		return enums.GenderMale, true
	case ButtonGenderFemale:
		return enums.GenderFemale, true
	default:
		return "", false
	}
}

func PreferenceFromButton(text string) (enums.GenderPreference, bool) {
	switch strings.TrimSpace(text) {
	case ButtonPrefMale:
		return enums.PreferenceMale, true
	case ButtonPrefFemale:
		return enums.PreferenceFemale, true
	case ButtonPrefAny:
		return enums.PreferenceAny, true
	default:
		return "", false
	}
}

func RenderCard(p model.Profile) string {
	return fmt.Sprintf("%s, %d\n%s", p.DisplayName, p.Age, p.Bio)
}

func MatchNotice(counterpart model.Profile, contactLink string) string {
	lines := []string{
		"Это взаимно! 🎉",
		RenderCard(counterpart),
		"Пиши: " + contactLink,
	}
	return strings.Join(lines, "\n\n")
}

func TooFast(retryAfterSec int64) string {
	return fmt.Sprintf("Слишком быстро! Подожди %d сек. и продолжай.", retryAfterSec)
}

func SupportMessage(supportURL string) string {
	return "По всем вопросам: " + supportURL
}
