//go:build !integration

package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/infra/worker"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	failEdit bool
	fileURL  string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && f.failEdit {
		return tgbotapi.Message{}, errors.New("message can't be edited")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	if f.fileURL == "" {
		return "", errors.New("file not found")
	}
	return f.fileURL + "/" + fileID, nil
}

type recordingHandler struct {
	events chan model.Event
}

func (h *recordingHandler) HandleEvent(_ context.Context, _ model.UserInfo, ev model.Event) error {
	h.events <- ev
	return nil
}

func (h *recordingHandler) Classify(text string) model.Event {
	if text == "Productos" {
		return model.MenuEvent(model.OptionProducts)
	}
	return model.TextEvent(text)
}

func testAdapter(api *fakeAPI, maxBytes int64) *RealTelegramBotAdapter {
	l := zerolog.New(io.Discard)
	a := newAdapter(api, maxBytes, &l)
	a.handler = &recordingHandler{events: make(chan model.Event, 4)}
	return a
}

func command(text string) *tgbotapi.Message {
	n := len(strings.Fields(text)[0])
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 42, UserName: "alice", FirstName: "Alice"},
		Chat:     &tgbotapi.Chat{ID: 42},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}},
	}
}

func TestClassify(t *testing.T) {
	a := testAdapter(&fakeAPI{}, 0)
	from := &tgbotapi.User{ID: 42, UserName: "alice", FirstName: "Alice"}

	tests := []struct {
		name   string
		update tgbotapi.Update
		want   model.Event
		ok     bool
	}{
		{
			name:   "start with referrer",
			update: tgbotapi.Update{Message: command("/start 1001")},
			want:   model.StartEvent("1001"),
			ok:     true,
		},
		{
			name:   "bare start",
			update: tgbotapi.Update{Message: command("/start")},
			want:   model.StartEvent(""),
			ok:     true,
		},
		{
			name:   "other command is free text",
			update: tgbotapi.Update{Message: command("/help")},
			want:   model.TextEvent("/help"),
			ok:     true,
		},
		{
			name:   "menu label",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: from, Text: "Productos"}},
			want:   model.MenuEvent(model.OptionProducts),
			ok:     true,
		},
		{
			name: "photo uses largest size",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: from, Photo: []tgbotapi.PhotoSize{
				{FileID: "small", FileUniqueID: "u-small"},
				{FileID: "big", FileUniqueID: "u-big"},
			}}},
			want: model.PhotoEvent(model.PhotoRef{SubmissionID: "u-big", FileID: "big"}),
			ok:   true,
		},
		{
			name: "callback",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
				ID: "cb1", From: from, Data: " menu ", Message: &tgbotapi.Message{MessageID: 9},
			}},
			want: model.CallbackEvent("menu", 9),
			ok:   true,
		},
		{
			name:   "bot sender ignored",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 7, IsBot: true}, Text: "hi"}},
			ok:     false,
		},
		{
			name:   "no message",
			update: tgbotapi.Update{},
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, ok := a.classify(tt.update)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if in.event != tt.want {
				t.Errorf("event = %+v, want %+v", in.event, tt.want)
			}
			if in.user.ID != 42 {
				t.Errorf("user id = %d", in.user.ID)
			}
		})
	}
}

func TestDispatchAnswersCallback(t *testing.T) {
	api := &fakeAPI{}
	a := testAdapter(api, 0)
	l := zerolog.New(io.Discard)
	pool := worker.NewPool(2, 4, &l)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()
	h := a.handler.(*recordingHandler)
	a.pool = pool

	a.dispatch(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID: "cb1", From: &tgbotapi.User{ID: 42}, Data: "menu",
	}})

	select {
	case ev := <-h.events:
		if ev.Kind != model.EventCallback {
			t.Fatalf("kind = %s", ev.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		api.mu.Lock()
		n := len(api.requests)
		api.mu.Unlock()
		if n == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("callback was not answered")
}

func TestDispatchRepliesWhenQueueFull(t *testing.T) {
	api := &fakeAPI{}
	a := testAdapter(api, 0).WithBusyText("busy")
	l := zerolog.New(io.Discard)
	// not started: the user's single queue slot stays occupied
	a.pool = worker.NewPool(1, 1, &l)
	defer a.pool.Stop()

	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: 42}, Chat: &tgbotapi.Chat{ID: 42}, Text: "hola",
	}
	a.dispatch(tgbotapi.Update{Message: msg})
	a.dispatch(tgbotapi.Update{Message: msg})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		api.mu.Lock()
		var got string
		if len(api.sent) == 1 {
			if m, ok := api.sent[0].(tgbotapi.MessageConfig); ok {
				got = m.Text
			}
		}
		api.mu.Unlock()
		if got == "busy" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("dropped update got no busy reply")
}

func TestSendTextKeyboards(t *testing.T) {
	api := &fakeAPI{}
	a := testAdapter(api, 0)
	ctx := context.Background()

	reply := model.ReplyKeyboard([]string{"A", "B"}, []string{"C"})
	if err := a.SendText(ctx, 1, "*hi*", true, reply); err != nil {
		t.Fatal(err)
	}
	inline := &model.Keyboard{Inline: true, Rows: [][]model.Button{{
		{Text: "Share", SwitchInlineQuery: "join me"},
		{Text: "Site", URL: "https://example.com"},
	}}}
	if err := a.SendText(ctx, 1, "share", false, inline); err != nil {
		t.Fatal(err)
	}

	first := api.sent[0].(tgbotapi.MessageConfig)
	if first.ParseMode != tgbotapi.ModeMarkdown {
		t.Errorf("parse mode = %q", first.ParseMode)
	}
	kb, ok := first.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok || len(kb.Keyboard) != 2 || len(kb.Keyboard[0]) != 2 || !kb.ResizeKeyboard {
		t.Errorf("reply markup = %+v", first.ReplyMarkup)
	}

	second := api.sent[1].(tgbotapi.MessageConfig)
	ik, ok := second.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(ik.InlineKeyboard) != 1 {
		t.Fatalf("inline markup = %+v", second.ReplyMarkup)
	}
	row := ik.InlineKeyboard[0]
	if row[0].SwitchInlineQuery == nil || *row[0].SwitchInlineQuery != "join me" {
		t.Errorf("switch button = %+v", row[0])
	}
	if row[1].URL == nil || *row[1].URL != "https://example.com" {
		t.Errorf("url button = %+v", row[1])
	}
}

func TestEditOrReplaceFallsBack(t *testing.T) {
	api := &fakeAPI{failEdit: true}
	a := testAdapter(api, 0)

	if err := a.EditOrReplace(context.Background(), 5, 77, "back"); err != nil {
		t.Fatal(err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(api.sent))
	}
	if m, ok := api.sent[0].(tgbotapi.MessageConfig); !ok || m.Text != "back" {
		t.Errorf("fallback = %+v", api.sent[0])
	}

	api.failEdit = false
	if err := a.EditOrReplace(context.Background(), 5, 77, "back"); err != nil {
		t.Fatal(err)
	}
	if _, ok := api.sent[1].(tgbotapi.EditMessageTextConfig); !ok {
		t.Errorf("expected edit, got %T", api.sent[1])
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/small":
			_, _ = w.Write([]byte("tiny"))
		case "/large":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	a := testAdapter(&fakeAPI{fileURL: srv.URL}, 16)
	ctx := context.Background()

	b, err := a.Fetch(ctx, "small")
	if err != nil || string(b) != "tiny" {
		t.Fatalf("Fetch(small) = %q, %v", b, err)
	}
	if _, err := a.Fetch(ctx, "large"); !errors.Is(err, domain.ErrDownloadFailed) {
		t.Errorf("Fetch(large) err = %v, want ErrDownloadFailed", err)
	}
	if _, err := a.Fetch(ctx, "missing"); err == nil {
		t.Error("Fetch(missing) should fail on 404")
	}
}

func TestNoopBotAdapter(t *testing.T) {
	l := zerolog.New(io.Discard)
	b := NewNoopBotAdapter(&l)
	b.delay = 0
	ctx := context.Background()

	if err := b.SendText(ctx, 1, "hi", false, model.ReplyKeyboard([]string{"A"})); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Fetch(ctx, "f"); !errors.Is(err, domain.ErrDownloadFailed) {
		t.Errorf("Fetch err = %v", err)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	b.delay = time.Second
	if err := b.Notify(cancelled, 1, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Notify on cancelled ctx = %v", err)
	}
}
