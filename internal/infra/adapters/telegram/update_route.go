package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"receipt-desk-bot/internal/domain/model"
)

type inbound struct {
	user       model.UserInfo
	event      model.Event
	callbackID string
}

// classify turns an update into a dialog event. Updates without a sender,
// or of kinds the dialog has no use for, report false.
func (r *RealTelegramBotAdapter) classify(up tgbotapi.Update) (inbound, bool) {
	if q := up.CallbackQuery; q != nil {
		return r.classifyCallback(q)
	}
	msg := up.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return inbound{}, false
	}
	user, err := model.NewUserInfo(msg.From.ID, msg.From.UserName, msg.From.FirstName)
	if err != nil {
		return inbound{}, false
	}
	in := inbound{user: user}

	switch {
	case msg.IsCommand():
		if msg.Command() == "start" {
			in.event = model.StartEvent(strings.TrimSpace(msg.CommandArguments()))
		} else {
			in.event = model.TextEvent(msg.Text)
		}
	case len(msg.Photo) > 0:
		in.event = model.PhotoEvent(photoRef(msg.Photo))
	case msg.Text != "":
		in.event = r.handler.Classify(msg.Text)
	default:
		// stickers, documents, voice: the dialog answers these like stray text
		in.event = model.TextEvent("")
	}
	return in, true
}

func (r *RealTelegramBotAdapter) classifyCallback(q *tgbotapi.CallbackQuery) (inbound, bool) {
	if q.From == nil {
		return inbound{}, false
	}
	user, err := model.NewUserInfo(q.From.ID, q.From.UserName, q.From.FirstName)
	if err != nil {
		return inbound{}, false
	}
	msgID := 0
	if q.Message != nil {
		msgID = q.Message.MessageID
	}
	return inbound{
		user:       user,
		event:      model.CallbackEvent(strings.TrimSpace(q.Data), msgID),
		callbackID: q.ID,
	}, true
}

// photoRef picks the largest rendition. FileUniqueID is the same for every
// copy of an image, forwards included, so it keys deduplication.
func photoRef(sizes []tgbotapi.PhotoSize) model.PhotoRef {
	largest := sizes[len(sizes)-1]
	id := largest.FileUniqueID
	if id == "" {
		id = largest.FileID
	}
	return model.PhotoRef{SubmissionID: id, FileID: largest.FileID}
}
