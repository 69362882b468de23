package ocr

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/adapter"
)

var _ adapter.TextExtractor = (*TesseractExtractor)(nil)

// TesseractExtractor shells out to the tesseract CLI, feeding the image on
// stdin and reading the recognised text from stdout.
type TesseractExtractor struct {
	binary   string
	language string
	run      func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)
}

func NewTesseractExtractor(binary, language string) *TesseractExtractor {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "spa"
	}
	return &TesseractExtractor{binary: binary, language: language, run: execRun}
}

func (t *TesseractExtractor) Name() string { return "tesseract" }

func (t *TesseractExtractor) Extract(ctx context.Context, png []byte) model.Extraction {
	if len(png) == 0 {
		return model.ExtractionFailed(t.Name(), "empty image")
	}
	out, err := t.run(ctx, t.binary, []string{"stdin", "stdout", "-l", t.language}, png)
	if err != nil {
		return model.ExtractionFailed(t.Name(), err.Error())
	}
	return model.ExtractedText(t.Name(), strings.TrimSpace(string(out)))
}

func execRun(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.New(name + ": " + msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
