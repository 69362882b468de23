package model

type EventKind string

const (
	EventStart         EventKind = "start"
	EventMenu          EventKind = "menu"
	EventProductChoice EventKind = "product_choice"
	EventPhoto         EventKind = "photo"
	EventText          EventKind = "text" // free text nobody recognised
	EventCallback      EventKind = "callback"
)

// PhotoRef identifies one uploaded image. SubmissionID is stable across
// re-deliveries and forwards of the same image; FileID is what the platform
// needs to download or re-send it.
type PhotoRef struct {
	SubmissionID string
	FileID       string
}

// Event is an inbound, transport-agnostic user event. Only the fields
// relevant to Kind are populated.
type Event struct {
	Kind          EventKind
	ReferrerParam string
	Option        MenuOption
	ProductID     string
	Photo         PhotoRef
	Text          string
	CallbackToken string
	MessageID     int // message a callback was attached to, 0 if unknown
}

func StartEvent(referrerParam string) Event {
	return Event{Kind: EventStart, ReferrerParam: referrerParam}
}

func MenuEvent(opt MenuOption) Event { return Event{Kind: EventMenu, Option: opt} }

func ProductEvent(productID string) Event {
	return Event{Kind: EventProductChoice, ProductID: productID}
}

func PhotoEvent(ref PhotoRef) Event { return Event{Kind: EventPhoto, Photo: ref} }

func TextEvent(text string) Event { return Event{Kind: EventText, Text: text} }

func CallbackEvent(token string, messageID int) Event {
	return Event{Kind: EventCallback, CallbackToken: token, MessageID: messageID}
}
