package adapter

import (
	"context"

	"receipt-desk-bot/internal/domain/model"
)

// TextExtractor is the port for image-to-text engines. Implementations never
// return a Go error: any failure is reported as a Failed extraction.
type TextExtractor interface {
	Name() string
	Extract(ctx context.Context, png []byte) model.Extraction
}
