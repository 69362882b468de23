package usecase

import (
	"context"
	"errors"
	"strings"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ DialogUseCase = (*dialogUC)(nil)

// DialogUseCase is the per-user state machine. Handle is total: every
// (state, event) pair yields a next state and at least one action. It may
// update the session's selection and receipt flag but leaves State to the
// caller, which applies Transition.Next.
type DialogUseCase interface {
	Handle(ctx context.Context, user model.UserInfo, s *model.Session, ev model.Event) model.Transition
}

type dialogUC struct {
	catalog   *model.Catalog
	labels    *MenuLabels
	t         Translator
	referrals ReferralUseCase
	receipts  ReceiptUseCase
	log       *zerolog.Logger
}

func NewDialogUseCase(
	catalog *model.Catalog,
	labels *MenuLabels,
	t Translator,
	referrals ReferralUseCase,
	receipts ReceiptUseCase,
	logger *zerolog.Logger,
) *dialogUC {
	l := logger.With().Str("component", "DialogUC").Logger()
	return &dialogUC{
		catalog:   catalog,
		labels:    labels,
		t:         t,
		referrals: referrals,
		receipts:  receipts,
		log:       &l,
	}
}

func (u *dialogUC) Handle(ctx context.Context, user model.UserInfo, s *model.Session, ev model.Event) model.Transition {
	defer logging.TraceDuration(u.log, "DialogUC.Handle")()

	state := s.State
	if !state.Valid() {
		state = model.StateMainMenu
	}

	switch ev.Kind {
	case model.EventStart:
		return u.start(ctx, user, s, ev.ReferrerParam)
	case model.EventCallback:
		s.ClearReceipt()
		return model.Transition{
			Next: model.StateMainMenu,
			Actions: []model.Action{
				model.EditOrReplace(user.ID, ev.MessageID, u.t.T("returning_to_menu")),
				u.mainMenuAction(user.ID),
			},
		}
	}

	if state == model.StateWaitingReceipt {
		return u.waitingReceipt(ctx, user, s, ev)
	}

	switch ev.Kind {
	case model.EventMenu:
		return u.menu(ctx, user, s, state, ev.Option)
	case model.EventProductChoice:
		if state == model.StateProducts {
			return u.chooseProduct(user, s, ev.ProductID)
		}
	}
	return u.unrecognized(user.ID, state)
}

func (u *dialogUC) start(ctx context.Context, user model.UserInfo, s *model.Session, referrerParam string) model.Transition {
	s.Reset()
	var actions []model.Action

	if referrerParam != "" {
		added, err := u.referrals.Link(ctx, referrerParam, user.ID)
		switch {
		case errors.Is(err, domain.ErrInvalidReferrer), errors.Is(err, domain.ErrSelfReferral):
			logging.With(ctx, u.log).Debug().Err(err).Str("param", referrerParam).Msg("referral ignored")
		case err != nil:
			logging.With(ctx, u.log).Error().Err(err).Msg("referral not recorded")
		case added:
			actions = append(actions, model.SendText(user.ID, u.t.T("referral_linked"), nil))
		}
	}

	name := user.DisplayName()
	if name == "" {
		name = u.t.T("friend")
	}
	actions = append(actions, model.SendMarkdown(user.ID, u.t.T("welcome", escapeMarkdown(name)), u.labels.MainMenu()))
	return model.Transition{Next: model.StateMainMenu, Actions: actions}
}

func (u *dialogUC) menu(ctx context.Context, user model.UserInfo, s *model.Session, state model.DialogState, opt model.MenuOption) model.Transition {
	switch state {
	case model.StateMainMenu:
		switch opt {
		case model.OptionProducts:
			return u.products(user.ID)
		case model.OptionPayment:
			return u.payment(user.ID, s, "")
		case model.OptionFaq:
			return u.faq(user.ID)
		case model.OptionReferrals:
			return u.referralScreen(ctx, user.ID, state)
		}

	case model.StateProducts, model.StatePayment, model.StateFaq, model.StateReferrals:
		switch opt {
		case model.OptionSendReceipt:
			return u.requestReceipt(user.ID, s)
		case model.OptionBackToMenu:
			return u.backToMenu(user.ID)
		case model.OptionSpecialOffer:
			if state == model.StateProducts {
				return u.specialOffer(user.ID)
			}
		case model.OptionPayment:
			if state == model.StateFaq {
				return u.payment(user.ID, s, "")
			}
		}
	}
	return u.unrecognized(user.ID, state)
}

func (u *dialogUC) products(chatID int64) model.Transition {
	if u.catalog.Len() == 0 {
		return model.Transition{
			Next:    model.StateProducts,
			Actions: []model.Action{model.SendText(chatID, u.t.T("products_empty"), u.labels.BackOnly())},
		}
	}
	var b strings.Builder
	b.WriteString(u.t.T("products_header"))
	for i, p := range u.catalog.Products() {
		b.WriteString("\n\n")
		b.WriteString(u.t.T("product_line", badge(i), escapeMarkdown(p.Name), u.catalog.FormatPrice(p.Price)))
		if p.Description != "" {
			b.WriteString("\n")
			b.WriteString(escapeMarkdown(p.Description))
		}
	}
	return model.Transition{
		Next:    model.StateProducts,
		Actions: []model.Action{model.SendMarkdown(chatID, b.String(), u.labels.ProductsMenu())},
	}
}

func (u *dialogUC) specialOffer(chatID int64) model.Transition {
	body := u.catalog.SpecialOffer
	if body == "" {
		body = u.t.T("special_offer_none")
	}
	text := u.t.T("special_offer_header") + "\n\n" + body
	return model.Transition{
		Next:    model.StateProducts,
		Actions: []model.Action{model.SendMarkdown(chatID, text, u.labels.ProductsMenu())},
	}
}

func (u *dialogUC) chooseProduct(user model.UserInfo, s *model.Session, id string) model.Transition {
	p, ok := u.catalog.Lookup(id)
	if !ok {
		tr := u.products(user.ID)
		tr.Actions = append([]model.Action{model.SendText(user.ID, u.t.T("product_unknown"), nil)}, tr.Actions...)
		return tr
	}
	s.Select(p)
	intro := u.t.T("product_selected", escapeMarkdown(p.Name), u.catalog.FormatPrice(p.Price))
	return u.payment(user.ID, s, intro)
}

func (u *dialogUC) payment(chatID int64, s *model.Session, intro string) model.Transition {
	parts := make([]string, 0, 5)
	if intro != "" {
		parts = append(parts, intro)
	}
	parts = append(parts, u.t.T("payment_header"))
	if intro == "" && s.HasSelection() {
		name := s.SelectedProductID
		if p, ok := u.catalog.Lookup(s.SelectedProductID); ok {
			name = p.Name
		}
		parts = append(parts, u.t.T("payment_selection", escapeMarkdown(name), u.catalog.FormatPrice(s.SelectedPrice)))
	}
	if u.catalog.PaymentInfo != "" {
		parts = append(parts, u.catalog.PaymentInfo)
	}
	parts = append(parts, u.t.T("payment_footer"))
	return model.Transition{
		Next:    model.StatePayment,
		Actions: []model.Action{model.SendMarkdown(chatID, strings.Join(parts, "\n\n"), u.labels.PaymentMenu())},
	}
}

func (u *dialogUC) faq(chatID int64) model.Transition {
	text := u.t.T("faq_header")
	if u.catalog.FaqText != "" {
		text += "\n\n" + u.catalog.FaqText
	}
	return model.Transition{
		Next:    model.StateFaq,
		Actions: []model.Action{model.SendMarkdown(chatID, text, u.labels.FaqMenu())},
	}
}

func (u *dialogUC) referralScreen(ctx context.Context, chatID int64, from model.DialogState) model.Transition {
	sum, err := u.referrals.Summary(ctx, chatID)
	if err != nil {
		logging.With(ctx, u.log).Error().Err(err).Msg("referral summary failed")
		return model.Transition{
			Next:    from,
			Actions: []model.Action{model.SendText(chatID, u.t.T("internal_error"), nil)},
		}
	}

	lines := []string{
		u.t.T("referrals_header"),
		u.t.T("referrals_link", sum.Link),
		u.t.T("referrals_count", sum.Count),
	}
	if sum.Current != nil {
		lines = append(lines, u.t.T("referrals_tier", sum.Current.Name))
	} else {
		lines = append(lines, u.t.T("referrals_no_tier"))
	}
	if sum.Next != nil {
		lines = append(lines, u.t.T("referrals_next", sum.Next.Threshold-sum.Count, sum.Next.Name))
	} else {
		lines = append(lines, u.t.T("referrals_max"))
	}

	share := &model.Keyboard{
		Inline: true,
		Rows: [][]model.Button{{
			{Text: u.t.T("btn_share"), SwitchInlineQuery: u.t.T("referrals_share_query", sum.Link)},
		}},
	}
	// The link contains underscores in most bot usernames, so this body
	// goes out as plain text.
	return model.Transition{
		Next: model.StateReferrals,
		Actions: []model.Action{
			model.SendText(chatID, stripMarkdown(strings.Join(lines, "\n\n")), u.labels.PaymentMenu()),
			model.SendText(chatID, u.t.T("referrals_share"), share),
		},
	}
}

func (u *dialogUC) requestReceipt(chatID int64, s *model.Session) model.Transition {
	s.ReceiptPending = true
	return model.Transition{
		Next:    model.StateWaitingReceipt,
		Actions: []model.Action{model.SendMarkdown(chatID, u.t.T("receipt_prompt"), u.labels.ReceiptMenu())},
	}
}

func (u *dialogUC) waitingReceipt(ctx context.Context, user model.UserInfo, s *model.Session, ev model.Event) model.Transition {
	switch {
	case ev.Kind == model.EventPhoto:
		return u.submitReceipt(ctx, user, s, ev.Photo)
	case ev.Kind == model.EventMenu && ev.Option == model.OptionBackToMenu:
		s.ClearReceipt()
		return u.backToMenu(user.ID)
	}
	return model.Transition{
		Next:    model.StateWaitingReceipt,
		Actions: []model.Action{model.SendMarkdown(user.ID, u.t.T("receipt_need_photo"), u.labels.ReceiptMenu())},
	}
}

func (u *dialogUC) submitReceipt(ctx context.Context, user model.UserInfo, s *model.Session, ref model.PhotoRef) model.Transition {
	sub := model.ReceiptSubmission{
		SubmissionID: ref.SubmissionID,
		FileID:       ref.FileID,
		User:         user,
		Currency:     u.catalog.Currency,
	}
	if s.HasSelection() {
		sub.ProductID = s.SelectedProductID
		sub.Price = s.SelectedPrice
		if p, ok := u.catalog.Lookup(s.SelectedProductID); ok {
			sub.ProductName = p.Name
		}
	}

	out := u.receipts.Submit(ctx, sub)
	switch out.Kind {
	case model.OutcomeAccepted:
		s.ClearReceipt()
		return model.Transition{
			Next: model.StateMainMenu,
			Actions: []model.Action{
				model.SendMarkdown(user.ID, u.t.T("receipt_accepted", out.TicketID), nil),
				u.mainMenuAction(user.ID),
			},
		}
	case model.OutcomeDuplicate:
		return model.Transition{
			Next:    model.StateWaitingReceipt,
			Actions: []model.Action{model.SendText(user.ID, u.t.T("receipt_duplicate"), u.labels.ReceiptMenu())},
		}
	default:
		logging.With(ctx, u.log).Warn().Err(out.Err).Msg("receipt processing error")
		return model.Transition{
			Next:    model.StateWaitingReceipt,
			Actions: []model.Action{model.SendText(user.ID, u.t.T("receipt_error"), u.labels.ReceiptMenu())},
		}
	}
}

func (u *dialogUC) backToMenu(chatID int64) model.Transition {
	return model.Transition{Next: model.StateMainMenu, Actions: []model.Action{u.mainMenuAction(chatID)}}
}

func (u *dialogUC) mainMenuAction(chatID int64) model.Action {
	return model.SendMarkdown(chatID, u.t.T("main_menu"), u.labels.MainMenu())
}

func (u *dialogUC) unrecognized(chatID int64, state model.DialogState) model.Transition {
	return model.Transition{
		Next:    state,
		Actions: []model.Action{model.SendText(chatID, u.t.T("unrecognized"), nil)},
	}
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escapeMarkdown protects user or catalog text embedded in legacy Markdown.
func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

var markdownStripper = strings.NewReplacer("*", "", "`", "")

func stripMarkdown(s string) string { return markdownStripper.Replace(s) }
