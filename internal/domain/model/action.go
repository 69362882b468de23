package model

type ActionKind string

const (
	ActionSendText      ActionKind = "send_text"
	ActionSendPhoto     ActionKind = "send_photo"
	ActionEditOrReplace ActionKind = "edit_or_replace"
)

// Button is one keyboard key. For reply keyboards only Text matters; inline
// keyboards use URL, Data or SwitchInlineQuery.
type Button struct {
	Text              string
	URL               string
	Data              string
	SwitchInlineQuery string
}

// Keyboard is attached to a SendText action. Inline keyboards are rendered
// under the message, reply keyboards replace the user's input keyboard.
type Keyboard struct {
	Rows   [][]Button
	Inline bool
}

// Action is an outbound instruction for the transport.
type Action struct {
	Kind      ActionKind
	ChatID    int64
	Text      string // body or caption
	Markdown  bool
	Keyboard  *Keyboard
	FileID    string // SendPhoto only
	MessageID int    // EditOrReplace only; 0 means send a new message
}

func SendText(chatID int64, text string, kb *Keyboard) Action {
	return Action{Kind: ActionSendText, ChatID: chatID, Text: text, Keyboard: kb}
}

func SendMarkdown(chatID int64, text string, kb *Keyboard) Action {
	a := SendText(chatID, text, kb)
	a.Markdown = true
	return a
}

func SendPhoto(chatID int64, fileID, caption string) Action {
	return Action{Kind: ActionSendPhoto, ChatID: chatID, FileID: fileID, Text: caption}
}

func EditOrReplace(chatID int64, messageID int, text string) Action {
	return Action{Kind: ActionEditOrReplace, ChatID: chatID, MessageID: messageID, Text: text}
}

// ReplyKeyboard builds a reply keyboard from rows of labels.
func ReplyKeyboard(rows ...[]string) *Keyboard {
	kb := &Keyboard{Rows: make([][]Button, 0, len(rows))}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]Button, 0, len(row))
		for _, label := range row {
			r = append(r, Button{Text: label})
		}
		kb.Rows = append(kb.Rows, r)
	}
	return kb
}
