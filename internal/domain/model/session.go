package model

import "time"

// Session is the per-user dialog record. SelectedPrice is always copied from
// the catalog at selection time, never taken from user input.
type Session struct {
	UserID            int64       `json:"user_id"`
	State             DialogState `json:"state"`
	SelectedProductID string      `json:"selected_product_id,omitempty"`
	SelectedPrice     int64       `json:"selected_price,omitempty"`
	ReceiptPending    bool        `json:"receipt_pending,omitempty"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// NewSession returns the record for a user seen for the first time.
func NewSession(userID int64) *Session {
	return &Session{UserID: userID, State: StateMainMenu, UpdatedAt: time.Now()}
}

// Reset drops everything accumulated during the dialog.
func (s *Session) Reset() {
	s.State = StateMainMenu
	s.SelectedProductID = ""
	s.SelectedPrice = 0
	s.ReceiptPending = false
}

// Select stores the product and its canonical price.
func (s *Session) Select(p Product) {
	s.SelectedProductID = p.ID
	s.SelectedPrice = p.Price
}

func (s *Session) HasSelection() bool { return s.SelectedProductID != "" }

func (s *Session) ClearReceipt() { s.ReceiptPending = false }

// Clone returns a detached copy so stores never hand out shared pointers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
