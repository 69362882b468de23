// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/infra/i18n"

	"github.com/rs/zerolog"
)

// --- Referral repo ---

type mockReferralRepo struct {
	mu    sync.Mutex
	lists map[int64][]int64
	err   error
}

func newMockReferralRepo() *mockReferralRepo {
	return &mockReferralRepo{lists: make(map[int64][]int64)}
}

func (m *mockReferralRepo) Add(ctx context.Context, referrerID, referredID int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.lists[referrerID] {
		if id == referredID {
			return false, nil
		}
	}
	m.lists[referrerID] = append(m.lists[referrerID], referredID)
	return true, nil
}

func (m *mockReferralRepo) List(ctx context.Context, referrerID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.lists[referrerID]...), nil
}

func (m *mockReferralRepo) Count(ctx context.Context, referrerID int64) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lists[referrerID]), nil
}

func (m *mockReferralRepo) Referrers(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lists), nil
}

// --- Receipt dedup repo ---

type mockDedupRepo struct {
	mu   sync.Mutex
	seen map[string]struct{}
	err  error
}

func newMockDedupRepo() *mockDedupRepo {
	return &mockDedupRepo{seen: make(map[string]struct{})}
}

func (m *mockDedupRepo) MarkSeen(ctx context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[id]; ok {
		return false, nil
	}
	m.seen[id] = struct{}{}
	return true, nil
}

func (m *mockDedupRepo) Seen(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[id]
	return ok, nil
}

func (m *mockDedupRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen), nil
}

// --- File fetcher ---

type mockFetcher struct {
	data  []byte
	err   error
	calls int
	mu    sync.Mutex
}

func (m *mockFetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

// --- Text extractor ---

type mockExtractor struct {
	text   string
	fail   bool
	delay  time.Duration // honours ctx when set
	called int
	mu     sync.Mutex
}

func (m *mockExtractor) Name() string { return "mock" }

func (m *mockExtractor) Extract(ctx context.Context, png []byte) model.Extraction {
	m.mu.Lock()
	m.called++
	m.mu.Unlock()
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return model.ExtractionFailed("mock", ctx.Err().Error())
		}
	}
	if m.fail {
		return model.ExtractionFailed("mock", "engine crashed")
	}
	return model.ExtractedText("mock", m.text)
}

// --- Messenger / Notifier ---

type sentPhoto struct {
	ChatID  int64
	FileID  string
	Caption string
}

type mockMessenger struct {
	mu       sync.Mutex
	photos   []sentPhoto
	texts    []string
	notices  []string
	photoErr error
}

func (m *mockMessenger) SendText(ctx context.Context, chatID int64, text string, markdown bool, kb *model.Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return nil
}

func (m *mockMessenger) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	if m.photoErr != nil {
		return m.photoErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photos = append(m.photos, sentPhoto{ChatID: chatID, FileID: fileID, Caption: caption})
	return nil
}

func (m *mockMessenger) EditOrReplace(ctx context.Context, chatID int64, messageID int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return nil
}

func (m *mockMessenger) Notify(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, text)
	return nil
}

func (m *mockMessenger) photoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.photos)
}

// --- Shared fixtures ---

var errBoom = errors.New("boom")

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// newTestTranslator loads the shipped Spanish locale so assertions compare
// against real copy.
func newTestTranslator() *i18n.Translator {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "es")
	if err != nil {
		panic(err)
	}
	return tr
}

func newTestCatalog() *model.Catalog {
	c, err := model.NewCatalog("MXN", []model.Product{
		{ID: "starter_pack", Name: "Starter pack", Price: 450},
		{ID: "pro_pack", Name: "Pro pack", Price: 900, Description: "Todo incluido"},
	})
	if err != nil {
		panic(err)
	}
	c.PaymentInfo = "Transferencia a la cuenta de ejemplo"
	c.FaqText = "¿Cuánto tarda? Un día hábil."
	c.SpecialOffer = "2x1 este fin de semana"
	return c
}

func identityNormalizer(raw []byte) ([]byte, error) { return raw, nil }
