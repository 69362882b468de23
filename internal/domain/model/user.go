package model

import (
	"strings"

	"receipt-desk-bot/internal/domain"
)

// UserInfo is what the transport tells us about the person behind an event.
// Only ID is mandatory; Telegram users may hide their username.
type UserInfo struct {
	ID        int64
	Username  string
	FirstName string
}

func NewUserInfo(id int64, username, firstName string) (UserInfo, error) {
	if id <= 0 {
		return UserInfo{}, domain.ErrInvalidArgument
	}
	return UserInfo{
		ID:        id,
		Username:  strings.TrimPrefix(strings.TrimSpace(username), "@"),
		FirstName: strings.TrimSpace(firstName),
	}, nil
}

// DisplayName prefers the first name, then the username.
func (u UserInfo) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return ""
}
