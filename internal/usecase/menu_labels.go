package usecase

import (
	"fmt"
	"strings"

	"receipt-desk-bot/internal/domain/model"
)

// Translator is the subset of the i18n translator the use cases need.
type Translator interface {
	T(key string, args ...interface{}) string
}

var optionKeys = map[model.MenuOption]string{
	model.OptionProducts:     "btn_products",
	model.OptionPayment:      "btn_payment",
	model.OptionFaq:          "btn_faq",
	model.OptionReferrals:    "btn_referrals",
	model.OptionSpecialOffer: "btn_special_offer",
	model.OptionSendReceipt:  "btn_send_receipt",
	model.OptionBackToMenu:   "btn_back_to_menu",
}

var numberBadges = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

func badge(i int) string {
	if i < len(numberBadges) {
		return numberBadges[i]
	}
	return fmt.Sprintf("%d.", i+1)
}

// MenuLabels maps keyboard labels to menu options and product ids and back.
// The engine only ever sees MenuOption values; label text lives here.
type MenuLabels struct {
	t        Translator
	catalog  *model.Catalog
	options  map[string]model.MenuOption
	products map[string]string
	byID     map[string]string
}

func NewMenuLabels(t Translator, catalog *model.Catalog) *MenuLabels {
	m := &MenuLabels{
		t:        t,
		catalog:  catalog,
		options:  make(map[string]model.MenuOption, len(optionKeys)),
		products: make(map[string]string, catalog.Len()),
		byID:     make(map[string]string, catalog.Len()),
	}
	for opt, key := range optionKeys {
		m.options[normalizeLabel(t.T(key))] = opt
	}
	for i, p := range catalog.Products() {
		label := t.T("btn_product", badge(i), p.Name, catalog.FormatPrice(p.Price))
		m.products[normalizeLabel(label)] = p.ID
		m.byID[p.ID] = label
	}
	return m
}

// Label returns the button text for opt.
func (m *MenuLabels) Label(opt model.MenuOption) string {
	return m.t.T(optionKeys[opt])
}

// ProductLabel returns the button text for a catalog product.
func (m *MenuLabels) ProductLabel(productID string) string {
	return m.byID[productID]
}

// Classify turns free text from the chat into an event. Unknown text becomes
// a Text event and lets the engine decide what to do with it.
func (m *MenuLabels) Classify(text string) model.Event {
	key := normalizeLabel(text)
	if opt, ok := m.options[key]; ok {
		return model.MenuEvent(opt)
	}
	if id, ok := m.products[key]; ok {
		return model.ProductEvent(id)
	}
	// A numbered button that matches nothing is a stale product keyboard;
	// let the engine answer "unknown product" instead of "unknown command".
	if looksLikeProduct(text) {
		return model.ProductEvent(strings.TrimSpace(text))
	}
	return model.TextEvent(text)
}

func looksLikeProduct(text string) bool {
	text = strings.TrimSpace(text)
	for _, b := range numberBadges {
		if strings.HasPrefix(text, b) {
			return true
		}
	}
	return false
}

// MainMenu is the reply keyboard shown after /start and on every return
// to the main menu.
func (m *MenuLabels) MainMenu() *model.Keyboard {
	return model.ReplyKeyboard(
		[]string{m.Label(model.OptionProducts), m.Label(model.OptionPayment)},
		[]string{m.Label(model.OptionFaq), m.Label(model.OptionReferrals)},
	)
}

// ProductsMenu lists every product two per row, then the offer and back keys.
func (m *MenuLabels) ProductsMenu() *model.Keyboard {
	var rows [][]string
	var row []string
	for _, p := range m.catalog.Products() {
		row = append(row, m.byID[p.ID])
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows,
		[]string{m.Label(model.OptionSpecialOffer)},
		[]string{m.Label(model.OptionBackToMenu)},
	)
	return model.ReplyKeyboard(rows...)
}

func (m *MenuLabels) PaymentMenu() *model.Keyboard {
	return model.ReplyKeyboard(
		[]string{m.Label(model.OptionSendReceipt)},
		[]string{m.Label(model.OptionBackToMenu)},
	)
}

func (m *MenuLabels) FaqMenu() *model.Keyboard {
	return model.ReplyKeyboard(
		[]string{m.Label(model.OptionPayment), m.Label(model.OptionSendReceipt)},
		[]string{m.Label(model.OptionBackToMenu)},
	)
}

func (m *MenuLabels) BackOnly() *model.Keyboard {
	return model.ReplyKeyboard([]string{m.Label(model.OptionBackToMenu)})
}

func (m *MenuLabels) ReceiptMenu() *model.Keyboard {
	return m.BackOnly()
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
