package model

// ReceiptSubmission carries everything the pipeline needs about one photo.
// Product fields are empty when the user never selected anything.
type ReceiptSubmission struct {
	SubmissionID string
	FileID       string
	User         UserInfo
	ProductID    string
	ProductName  string
	Price        int64
	Currency     string
}

type ReceiptOutcomeKind string

const (
	OutcomeDuplicate       ReceiptOutcomeKind = "duplicate"
	OutcomeAccepted        ReceiptOutcomeKind = "accepted"
	OutcomeProcessingError ReceiptOutcomeKind = "processing_error"
)

// ReceiptOutcome is the result of one submission. ExtractedValid, TicketID
// and Fingerprint are set only for accepted submissions; Err only for
// processing errors.
type ReceiptOutcome struct {
	Kind           ReceiptOutcomeKind
	ExtractedValid bool
	TicketID       string
	Fingerprint    string
	Err            error
}

func (o ReceiptOutcome) Accepted() bool { return o.Kind == OutcomeAccepted }

// Extraction is the tagged result of a text extractor. Failed results carry
// a reason instead of text; the pipeline treats them as valid.
type Extraction struct {
	Text     string
	Failed   bool
	Reason   string
	Provider string
}

func ExtractedText(provider, text string) Extraction {
	return Extraction{Text: text, Provider: provider}
}

func ExtractionFailed(provider, reason string) Extraction {
	return Extraction{Failed: true, Reason: reason, Provider: provider}
}
