package model

// DialogState is the discrete mode a user's conversation is in.
type DialogState string

const (
	StateMainMenu       DialogState = "main_menu"
	StateProducts       DialogState = "products"
	StatePayment        DialogState = "payment"
	StateFaq            DialogState = "faq"
	StateReferrals      DialogState = "referrals"
	StateWaitingReceipt DialogState = "waiting_receipt"
)

var dialogStates = []DialogState{
	StateMainMenu, StateProducts, StatePayment, StateFaq, StateReferrals, StateWaitingReceipt,
}

// AllStates returns every dialog state in declaration order.
func AllStates() []DialogState {
	out := make([]DialogState, len(dialogStates))
	copy(out, dialogStates)
	return out
}

func (s DialogState) Valid() bool {
	for _, v := range dialogStates {
		if v == s {
			return true
		}
	}
	return false
}

// MenuOption is a closed set of menu buttons. The transport adapter maps
// whatever label the user tapped onto one of these.
type MenuOption string

const (
	OptionProducts     MenuOption = "products"
	OptionPayment      MenuOption = "payment"
	OptionFaq          MenuOption = "faq"
	OptionReferrals    MenuOption = "referrals"
	OptionSpecialOffer MenuOption = "special_offer"
	OptionSendReceipt  MenuOption = "send_receipt"
	OptionBackToMenu   MenuOption = "back_to_menu"
)

var menuOptions = []MenuOption{
	OptionProducts, OptionPayment, OptionFaq, OptionReferrals,
	OptionSpecialOffer, OptionSendReceipt, OptionBackToMenu,
}

// AllMenuOptions returns every menu option in declaration order.
func AllMenuOptions() []MenuOption {
	out := make([]MenuOption, len(menuOptions))
	copy(out, menuOptions)
	return out
}

// Transition is what the dialog engine decides for one event.
type Transition struct {
	Next    DialogState
	Actions []Action
}
