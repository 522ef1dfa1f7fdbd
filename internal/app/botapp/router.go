package botapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	tginfra "github.com/kolotovalexander/znakomstva-shahter/internal/infra/telegram"
	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/enums"
	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/model"
	"github.com/kolotovalexander/znakomstva-shahter/internal/domain/rules"
	feedsvc "github.com/kolotovalexander/znakomstva-shahter/internal/services/feed"
	matchingsvc "github.com/kolotovalexander/znakomstva-shahter/internal/services/matching"
	profilessvc "github.com/kolotovalexander/znakomstva-shahter/internal/services/profiles"
	"github.com/kolotovalexander/znakomstva-shahter/internal/ui"
)

const (
	callbackProfileSave   = "profile:save"
	callbackProfileEdit   = "profile:edit"
	callbackProfileDelete = "profile:delete"
	callbackProfileHide   = "profile:hide"
	callbackProfileShow   = "profile:show"
	callbackDeleteYes     = "profile:delete_yes"
	callbackDeleteNo      = "profile:delete_no"
)

type sender interface {
	Send(msg tgbotapi.Chattable) error
	AnswerCallback(callbackID, text string) error
}

type router struct {
	logger     *zap.Logger
	sender     sender
	profiles   *profilessvc.Service
	matching   *matchingsvc.Service
	feed       *feedsvc.Service
	sessions   *sessionStore
	adminIDs   map[int64]struct{}
	supportURL string
}

func newRouter(
	logger *zap.Logger,
	snd sender,
	profiles *profilessvc.Service,
	matching *matchingsvc.Service,
	feed *feedsvc.Service,
	sessions *sessionStore,
	adminIDs []int64,
	supportURL string,
) *router {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return &router{
		logger:     logger,
		sender:     snd,
		profiles:   profiles,
		matching:   matching,
		feed:       feed,
		sessions:   sessions,
		adminIDs:   admins,
		supportURL: supportURL,
	}
}

func (r *router) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		r.routeMessage(ctx, update.Message)
	}
	if update.CallbackQuery != nil {
		r.routeCallback(ctx, update.CallbackQuery)
	}
}

func (r *router) routeMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	sess := r.sessions.get(msg.From.ID)
	sess.chatID = msg.Chat.ID

	if msg.IsCommand() {
		r.routeCommand(ctx, sess, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == ui.ButtonCancel {
		sess.state = stateIdle
		sess.resetCycle()
		r.sendMenu(sess.chatID, ui.DialogueCanceled)
		return
	}

	switch sess.state {
	case stateName, stateAge, stateGender, statePreference, stateBio, statePhoto, stateConfirm:
		r.handleOnboardingInput(ctx, sess, msg)
	case stateBrowsing:
		r.handleBrowsingInput(ctx, sess, text)
	default:
		r.handleMenu(ctx, sess, text)
	}
}

func (r *router) routeCommand(ctx context.Context, sess *session, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		r.handleStart(ctx, sess, msg)
	case "reset":
		r.handleReset(ctx, sess, msg)
	case "help":
		r.sendText(sess.chatID, ui.SupportMessage(r.supportURL))
	case "allmessage":
		r.handleBroadcast(ctx, sess, msg)
	default:
		r.sendText(sess.chatID, ui.UnknownInput)
	}
}

func (r *router) handleStart(ctx context.Context, sess *session, msg *tgbotapi.Message) {
	profile, err := r.profiles.Get(ctx, sess.userID)
	if err == nil && profile.Status == enums.ProfileStatusActive {
		sess.state = stateIdle
		r.sendMenu(sess.chatID, ui.WelcomeBack)
		return
	}
	if err != nil && !errors.Is(err, profilessvc.ErrNotFound) {
		r.logger.Warn("lookup profile on start", zap.Error(err), zap.Int64("user_id", sess.userID))
		r.sendText(sess.chatID, ui.StorageError)
		return
	}

	r.beginOnboarding(sess, msg.From, ui.Greeting+"\n\n"+ui.PromptName)
}

func (r *router) handleReset(ctx context.Context, sess *session, msg *tgbotapi.Message) {
	if err := r.matching.Reset(ctx, sess.userID); err != nil && !errors.Is(err, matchingsvc.ErrValidation) {
		// A user without a stored profile can still restart the dialogue.
		r.logger.Warn("reset user", zap.Error(err), zap.Int64("user_id", sess.userID))
	}

	r.beginOnboarding(sess, msg.From, ui.ProfileReset)
}

func (r *router) beginOnboarding(sess *session, from *tgbotapi.User, text string) {
	username := ""
	if from != nil {
		username = from.UserName
	}

	sess.resetDialogue()
	sess.draft = profilessvc.Draft{UserID: sess.userID, Username: username}
	sess.state = stateName

	r.sendWithKeyboard(sess.chatID, text, ui.CancelMenu())
}

// beginEdit restarts the questionnaire with the previous answers kept.
// Each prompt offers the stored value as a tappable answer, so the user
// only retypes what actually changed.
func (r *router) beginEdit(ctx context.Context, sess *session, from *tgbotapi.User, text string) {
	prev := sess.draft
	if prev.DisplayName == "" {
		if profile, err := r.profiles.Get(ctx, sess.userID); err == nil {
			prev = profilessvc.Draft{
				Username:        profile.Username,
				DisplayName:     profile.DisplayName,
				Age:             profile.Age,
				Gender:          profile.Gender,
				PreferredGender: profile.PreferredGender,
				Bio:             profile.Bio,
				PhotoFileID:     profile.PhotoFileID,
			}
		}
	}
	if from != nil && from.UserName != "" {
		prev.Username = from.UserName
	}

	sess.resetCycle()
	sess.draft = prev
	sess.draft.UserID = sess.userID
	sess.state = stateName

	r.sendWithKeyboard(sess.chatID, text, r.promptRows(sess))
}

// promptRows builds the reply keyboard for the current questionnaire
// step. Choice steps show their fixed options; for free-text steps a
// kept value from an edit becomes the top button.
func (r *router) promptRows(sess *session) [][]string {
	var keep string
	switch sess.state {
	case stateName:
		keep = sess.draft.DisplayName
	case stateAge:
		if sess.draft.Age > 0 {
			keep = strconv.Itoa(sess.draft.Age)
		}
	case stateGender:
		return ui.GenderMenu()
	case statePreference:
		return ui.PreferenceMenu()
	case stateBio:
		keep = sess.draft.Bio
	case statePhoto:
		if sess.draft.PhotoFileID != "" {
			keep = ui.ButtonKeepPhoto
		}
	}

	var rows [][]string
	if keep != "" {
		rows = append(rows, []string{keep})
	}
	return append(rows, []string{ui.ButtonCancel})
}

func (r *router) handleOnboardingInput(ctx context.Context, sess *session, msg *tgbotapi.Message) {
	switch sess.state {
	case stateName:
		name, err := rules.ValidateName(msg.Text)
		if err != nil {
			r.sendText(sess.chatID, ui.ValidationMessage(err))
			return
		}
		sess.draft.DisplayName = name
		sess.state = stateAge
		r.sendWithKeyboard(sess.chatID, ui.PromptAge, r.promptRows(sess))
	case stateAge:
		age, err := rules.ValidateAge(msg.Text)
		if err != nil {
			r.sendText(sess.chatID, ui.ValidationMessage(err))
			return
		}
		sess.draft.Age = age
		sess.state = stateGender
		r.sendWithKeyboard(sess.chatID, ui.PromptGender, r.promptRows(sess))
	case stateGender:
		gender, ok := ui.GenderFromButton(msg.Text)
		if !ok {
			r.sendWithKeyboard(sess.chatID, ui.ChooseFromKeyboard, r.promptRows(sess))
			return
		}
		sess.draft.Gender = gender
		sess.state = statePreference
		r.sendWithKeyboard(sess.chatID, ui.PromptPreference, r.promptRows(sess))
	case statePreference:
		preference, ok := ui.PreferenceFromButton(msg.Text)
		if !ok {
			r.sendWithKeyboard(sess.chatID, ui.ChooseFromKeyboard, r.promptRows(sess))
			return
		}
		sess.draft.PreferredGender = preference
		sess.state = stateBio
		r.sendWithKeyboard(sess.chatID, ui.PromptBio, r.promptRows(sess))
	case stateBio:
		bio, err := rules.ValidateBio(msg.Text)
		if err != nil {
			r.sendText(sess.chatID, ui.ValidationMessage(err))
			return
		}
		sess.draft.Bio = bio
		sess.state = statePhoto
		r.sendWithKeyboard(sess.chatID, ui.PromptPhoto, r.promptRows(sess))
	case statePhoto:
		if strings.TrimSpace(msg.Text) == ui.ButtonKeepPhoto && sess.draft.PhotoFileID != "" {
			sess.state = stateConfirm
			r.sendConfirmPreview(sess)
			return
		}
		fileID := largestPhotoID(msg)
		fileID, err := rules.ValidatePhoto(fileID)
		if err != nil {
			r.sendText(sess.chatID, ui.ValidationMessage(err))
			return
		}
		sess.draft.PhotoFileID = fileID
		sess.state = stateConfirm
		r.sendConfirmPreview(sess)
	case stateConfirm:
		r.sendText(sess.chatID, ui.UnknownInput)
	}
}

func (r *router) sendConfirmPreview(sess *session) {
	preview := model.Profile{
		DisplayName: sess.draft.DisplayName,
		Age:         sess.draft.Age,
		Bio:         sess.draft.Bio,
	}

	photo := tgbotapi.NewPhoto(sess.chatID, tgbotapi.FileID(sess.draft.PhotoFileID))
	photo.Caption = ui.RenderCard(preview) + "\n\n" + ui.PromptConfirm
	photo.ReplyMarkup = tginfra.BuildInlineKeyboard([][]tginfra.InlineButton{
		{
			{Text: ui.ConfirmYes, Data: callbackProfileSave},
			{Text: ui.ConfirmEdit, Data: callbackProfileEdit},
		},
	})

	r.send(photo)
}

func (r *router) handleMenu(ctx context.Context, sess *session, text string) {
	switch text {
	case ui.ButtonBrowse:
		r.startBrowsing(ctx, sess)
	case ui.ButtonProfile:
		r.showOwnProfile(ctx, sess)
	case ui.ButtonEdit:
		r.beginEdit(ctx, sess, nil, ui.EditRestart)
	case ui.ButtonSupport:
		r.sendText(sess.chatID, ui.SupportMessage(r.supportURL))
	default:
		r.sendText(sess.chatID, ui.UnknownInput)
	}
}

func (r *router) handleBrowsingInput(ctx context.Context, sess *session, text string) {
	switch text {
	case ui.ButtonLike:
		r.handleLike(ctx, sess)
	case ui.ButtonPass:
		r.advancePastCurrent(ctx, sess)
	case ui.ButtonBack:
		sess.state = stateIdle
		sess.resetCycle()
		r.sendMenu(sess.chatID, ui.DialogueCanceled)
	default:
		r.handleMenu(ctx, sess, text)
	}
}

func (r *router) startBrowsing(ctx context.Context, sess *session) {
	profile, err := r.profiles.Get(ctx, sess.userID)
	if err != nil {
		if errors.Is(err, profilessvc.ErrNotFound) {
			r.sendText(sess.chatID, ui.BrowseNotReady)
			return
		}
		r.logger.Warn("lookup viewer profile", zap.Error(err), zap.Int64("user_id", sess.userID))
		r.sendText(sess.chatID, ui.StorageError)
		return
	}
	if profile.Status != enums.ProfileStatusActive {
		r.sendText(sess.chatID, ui.BrowseNotReady)
		return
	}

	sess.state = stateBrowsing
	sess.resetCycle()
	r.showNextCandidate(ctx, sess)
}

func (r *router) showNextCandidate(ctx context.Context, sess *session) {
	candidate, err := r.feed.Next(ctx, sess.userID, sess.afterID, sess.excluded)
	if err != nil {
		if errors.Is(err, feedsvc.ErrCycleComplete) {
			sess.state = stateIdle
			sess.resetCycle()
			r.sendMenu(sess.chatID, ui.BrowseEmpty)
			return
		}
		r.logger.Warn("next candidate", zap.Error(err), zap.Int64("user_id", sess.userID))
		r.sendText(sess.chatID, ui.StorageError)
		return
	}

	sess.currentID = candidate.UserID

	photo := tgbotapi.NewPhoto(sess.chatID, tgbotapi.FileID(candidate.PhotoFileID))
	photo.Caption = ui.RenderCard(candidate)
	photo.ReplyMarkup = tginfra.BuildReplyKeyboard(ui.BrowseMenu())
	r.send(photo)
}

func (r *router) handleLike(ctx context.Context, sess *session) {
	if sess.currentID <= 0 {
		r.showNextCandidate(ctx, sess)
		return
	}

	outcome, err := r.matching.Like(ctx, sess.userID, sess.currentID)
	if err != nil {
		if errors.Is(err, matchingsvc.ErrInvalidTarget) {
			// Card went stale (deleted or demoted), just move on.
			r.advancePastCurrent(ctx, sess)
			return
		}
		r.logger.Warn("record like", zap.Error(err), zap.Int64("user_id", sess.userID), zap.Int64("target_id", sess.currentID))
		r.sendText(sess.chatID, ui.StorageError)
		return
	}

	if outcome.TooFast {
		r.sendText(sess.chatID, ui.TooFast(outcome.RetryAfterSec))
		return
	}

	if outcome.AlreadyLiked {
		r.sendText(sess.chatID, ui.LikeRepeated)
		r.advancePastCurrent(ctx, sess)
		return
	}

	if outcome.Mutual {
		r.notifyMatch(ctx, sess, outcome.Counterpart)
	} else {
		r.sendText(sess.chatID, ui.LikeSaved)
	}

	r.advancePastCurrent(ctx, sess)
}

// notifyMatch sends the two match notifications independently. A failed
// delivery is logged and never affects the stored match or the other
// side.
func (r *router) notifyMatch(ctx context.Context, sess *session, counterpart model.Profile) {
	notice := tgbotapi.NewMessage(sess.chatID, ui.MatchNotice(counterpart, profilessvc.ContactLink(counterpart)))
	if err := r.sender.Send(notice); err != nil {
		r.logger.Warn("deliver match notice", zap.Error(err), zap.Int64("user_id", sess.userID))
	}

	// Without the liker's card there is nothing useful to show the other
	// side, so a failed lookup skips the reverse notice instead of sending
	// an empty card.
	liker, err := r.profiles.Get(ctx, sess.userID)
	if err != nil {
		r.logger.Warn("lookup liker profile for match notice", zap.Error(err), zap.Int64("user_id", sess.userID))
		return
	}

	// Private chat id equals the telegram user id.
	reverse := tgbotapi.NewMessage(counterpart.UserID, ui.MatchNotice(liker, profilessvc.ContactLink(liker)))
	if err := r.sender.Send(reverse); err != nil {
		r.logger.Warn("deliver match notice", zap.Error(err), zap.Int64("user_id", counterpart.UserID))
	}
}

func (r *router) advancePastCurrent(ctx context.Context, sess *session) {
	if sess.currentID > 0 {
		sess.excluded = append(sess.excluded, sess.currentID)
		sess.afterID = sess.currentID
		sess.currentID = 0
	}
	r.showNextCandidate(ctx, sess)
}

func (r *router) showOwnProfile(ctx context.Context, sess *session) {
	profile, err := r.profiles.Get(ctx, sess.userID)
	if err != nil {
		if errors.Is(err, profilessvc.ErrNotFound) {
			r.sendText(sess.chatID, ui.ProfileMissing)
			return
		}
		r.logger.Warn("lookup own profile", zap.Error(err), zap.Int64("user_id", sess.userID))
		r.sendText(sess.chatID, ui.StorageError)
		return
	}
	if profile.PhotoFileID == "" {
		r.sendText(sess.chatID, ui.ProfileMissing)
		return
	}

	visibility := tginfra.InlineButton{Text: ui.ButtonHide, Data: callbackProfileHide}
	if profile.Status == enums.ProfileStatusHidden {
		visibility = tginfra.InlineButton{Text: ui.ButtonShow, Data: callbackProfileShow}
	}

	photo := tgbotapi.NewPhoto(sess.chatID, tgbotapi.FileID(profile.PhotoFileID))
	photo.Caption = ui.RenderCard(profile)
	photo.ReplyMarkup = tginfra.BuildInlineKeyboard([][]tginfra.InlineButton{
		{visibility},
		{{Text: ui.ButtonDelete, Data: callbackProfileDelete}},
	})
	r.send(photo)
}

func (r *router) routeCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil || cq.Message == nil {
		return
	}

	sess := r.sessions.get(cq.From.ID)
	sess.chatID = cq.Message.Chat.ID

	if err := r.sender.AnswerCallback(cq.ID, ""); err != nil {
		r.logger.Warn("answer callback", zap.Error(err), zap.Int64("user_id", sess.userID))
	}

	switch cq.Data {
	case callbackProfileSave:
		r.commitDraft(ctx, sess)
	case callbackProfileEdit:
		r.beginEdit(ctx, sess, cq.From, ui.EditRestart)
	case callbackProfileHide:
		if err := r.profiles.SetVisible(ctx, sess.userID, false); err != nil {
			r.logger.Warn("hide profile", zap.Error(err), zap.Int64("user_id", sess.userID))
			r.sendText(sess.chatID, ui.StorageError)
			return
		}
		r.sendMenu(sess.chatID, ui.ProfileHidden)
	case callbackProfileShow:
		if err := r.profiles.SetVisible(ctx, sess.userID, true); err != nil {
			r.logger.Warn("show profile", zap.Error(err), zap.Int64("user_id", sess.userID))
			r.sendText(sess.chatID, ui.StorageError)
			return
		}
		r.sendMenu(sess.chatID, ui.ProfileShown)
	case callbackProfileDelete:
		confirm := tgbotapi.NewMessage(sess.chatID, ui.DeleteConfirm)
		confirm.ReplyMarkup = tginfra.BuildInlineKeyboard([][]tginfra.InlineButton{
			{
				{Text: ui.DeleteYes, Data: callbackDeleteYes},
				{Text: ui.DeleteNo, Data: callbackDeleteNo},
			},
		})
		r.send(confirm)
	case callbackDeleteYes:
		if err := r.profiles.Delete(ctx, sess.userID); err != nil {
			r.logger.Warn("delete profile", zap.Error(err), zap.Int64("user_id", sess.userID))
			r.sendText(sess.chatID, ui.StorageError)
			return
		}
		sess.resetDialogue()
		r.sendMenu(sess.chatID, ui.ProfileDeleted)
	case callbackDeleteNo:
		r.sendMenu(sess.chatID, ui.DialogueCanceled)
	default:
		r.sendText(sess.chatID, ui.UnknownInput)
	}
}

func (r *router) commitDraft(ctx context.Context, sess *session) {
	if sess.state != stateConfirm {
		r.sendText(sess.chatID, ui.UnknownInput)
		return
	}

	if _, err := r.profiles.Commit(ctx, sess.draft); err != nil {
		if errors.Is(err, profilessvc.ErrValidation) {
			r.beginOnboarding(sess, nil, ui.ValidationMessage(err)+"\n\n"+ui.PromptName)
			return
		}
		r.logger.Warn("commit profile draft", zap.Error(err), zap.Int64("user_id", sess.userID))
		r.sendText(sess.chatID, ui.StorageError)
		return
	}

	sess.state = stateIdle
	r.sendMenu(sess.chatID, ui.ProfileSaved)
}

func (r *router) handleBroadcast(ctx context.Context, sess *session, msg *tgbotapi.Message) {
	if _, ok := r.adminIDs[sess.userID]; !ok {
		r.sendText(sess.chatID, ui.UnknownInput)
		return
	}

	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		r.sendText(sess.chatID, "Использование: /allmessage <текст>")
		return
	}

	ids, err := r.profiles.ActiveUserIDs(ctx)
	if err != nil {
		r.logger.Warn("list broadcast recipients", zap.Error(err))
		r.sendText(sess.chatID, ui.StorageError)
		return
	}

	sent := 0
	for _, id := range ids {
		if err := r.sender.Send(tgbotapi.NewMessage(id, text)); err != nil {
			r.logger.Warn("deliver broadcast", zap.Error(err), zap.Int64("user_id", id))
			continue
		}
		sent++
	}

	r.sendText(sess.chatID, fmt.Sprintf("Отправлено: %d из %d", sent, len(ids)))
}

func (r *router) sendText(chatID int64, text string) {
	r.send(tgbotapi.NewMessage(chatID, text))
}

func (r *router) sendMenu(chatID int64, text string) {
	r.sendWithKeyboard(chatID, text, ui.MainMenu())
}

func (r *router) sendWithKeyboard(chatID int64, text string, rows [][]string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tginfra.BuildReplyKeyboard(rows)
	r.send(msg)
}

func (r *router) send(msg tgbotapi.Chattable) {
	if err := r.sender.Send(msg); err != nil {
		r.logger.Warn("send telegram message", zap.Error(err))
	}
}

func largestPhotoID(msg *tgbotapi.Message) string {
	if len(msg.Photo) == 0 {
		return ""
	}
	return msg.Photo[len(msg.Photo)-1].FileID
}
