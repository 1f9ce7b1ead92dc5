package transport

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram implements Transport over the Telegram Bot API.
type Telegram struct {
	api *tgbotapi.BotAPI
	me  Identity
}

func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	t := &Telegram{
		api: api,
		me: Identity{
			ID:       api.Self.ID,
			Username: api.Self.UserName,
		},
	}

	slog.Info("telegram connected", "username", t.me.Username)
	return t, nil
}

func (t *Telegram) Me() Identity {
	return t.me
}

// Updates starts long polling and returns a channel of normalized updates.
// The channel closes when ctx is cancelled.
func (t *Telegram) Updates(ctx context.Context) <-chan Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	raw := t.api.GetUpdatesChan(cfg)
	out := make(chan Update)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				t.api.StopReceivingUpdates()
				return
			case u, ok := <-raw:
				if !ok {
					return
				}
				up, ok := normalize(u)
				if !ok {
					continue
				}
				select {
				case out <- up:
				case <-ctx.Done():
					t.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()

	return out
}

// normalize converts a raw Telegram update into the transport's Update.
// Updates that carry neither a message nor a callback query are dropped.
func normalize(u tgbotapi.Update) (Update, bool) {
	if u.CallbackQuery != nil {
		cq := u.CallbackQuery
		up := Update{
			UserID: cq.From.ID,
			Callback: &Callback{
				ID:   cq.ID,
				Data: cq.Data,
			},
		}
		if cq.Message != nil {
			up.ChatID = cq.Message.Chat.ID
			up.Callback.MessageID = cq.Message.MessageID
		}
		return up, true
	}

	if u.Message == nil || u.Message.From == nil {
		return Update{}, false
	}

	msg := u.Message
	up := Update{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
		File:      incomingFile(msg),
		HasMedia:  msg.Text == "",
	}
	if msg.IsCommand() {
		up.Command = msg.Command()
		up.Args = strings.TrimSpace(msg.CommandArguments())
	}
	return up, true
}

// incomingFile extracts a supported attachment. Photos use the largest
// rendition; generated names follow the transport file id.
func incomingFile(msg *tgbotapi.Message) *IncomingFile {
	switch {
	case msg.Document != nil:
		name := msg.Document.FileName
		if name == "" {
			name = "document_" + shortID(msg.Document.FileID)
		}
		return &IncomingFile{
			FileID:   msg.Document.FileID,
			FileName: name,
			FileSize: int64(msg.Document.FileSize),
			Kind:     "document",
			Caption:  msg.Caption,
		}
	case len(msg.Photo) > 0:
		photo := msg.Photo[len(msg.Photo)-1]
		return &IncomingFile{
			FileID:   photo.FileID,
			FileName: "photo_" + shortID(photo.FileID) + ".jpg",
			FileSize: int64(photo.FileSize),
			Kind:     "photo",
			Caption:  msg.Caption,
		}
	case msg.Video != nil:
		return &IncomingFile{
			FileID:   msg.Video.FileID,
			FileName: "video_" + shortID(msg.Video.FileID) + ".mp4",
			FileSize: int64(msg.Video.FileSize),
			Kind:     "video",
			Caption:  msg.Caption,
		}
	case msg.Audio != nil:
		return &IncomingFile{
			FileID:   msg.Audio.FileID,
			FileName: "audio_" + shortID(msg.Audio.FileID) + ".mp3",
			FileSize: int64(msg.Audio.FileSize),
			Kind:     "audio",
			Caption:  msg.Caption,
		}
	}
	return nil
}

func shortID(fileID string) string {
	if len(fileID) > 8 {
		return fileID[:8]
	}
	return fileID
}

func (t *Telegram) SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = markup(kb)
	}
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (t *Telegram) SendDocument(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	cfg := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	cfg.Caption = caption
	return t.send(cfg)
}

func (t *Telegram) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	cfg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	cfg.Caption = caption
	return t.send(cfg)
}

func (t *Telegram) SendVideo(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	cfg := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
	cfg.Caption = caption
	return t.send(cfg)
}

func (t *Telegram) SendAudio(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	cfg := tgbotapi.NewAudio(chatID, tgbotapi.FileID(fileID))
	cfg.Caption = caption
	return t.send(cfg)
}

func (t *Telegram) send(cfg tgbotapi.Chattable) (int, error) {
	sent, err := t.api.Send(cfg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (t *Telegram) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	if err != nil && strings.Contains(err.Error(), "not found") {
		return ErrMessageNotFound
	}
	return err
}

func (t *Telegram) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, kb Keyboard) error {
	var err error
	if kb != nil {
		_, err = t.api.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup(kb)))
	} else {
		_, err = t.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	}
	if err != nil && strings.Contains(err.Error(), "not found") {
		return ErrMessageNotFound
	}
	return err
}

func (t *Telegram) ChatMemberStatus(ctx context.Context, channelID string, userID int64) (MemberStatus, error) {
	chat := tgbotapi.ChatConfigWithUser{UserID: userID}
	id, err := parseChatID(channelID)
	if err == nil {
		chat.ChatID = id
	} else {
		chat.SuperGroupUsername = channelID
	}

	member, err := t.api.GetChatMember(tgbotapi.GetChatMemberConfig{ChatConfigWithUser: chat})
	if err != nil {
		return "", err
	}
	return MemberStatus(member.Status), nil
}

func (t *Telegram) AnswerCallback(ctx context.Context, callbackID string) error {
	_, err := t.api.Request(tgbotapi.NewCallback(callbackID, ""))
	return err
}

// parseChatID distinguishes numeric chat ids from @username references.
func parseChatID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func markup(kb Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
