//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"receipt-desk-bot/internal/config"
)

func TestWithAttachesContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := newWithWriter(config.LogConfig{Level: "debug", Format: "json"}, false, &buf)

	ctx := WithTraceID(context.Background(), "trace-1")
	ctx = WithTgID(ctx, 42)
	ctx = WithEvent(ctx, "photo")
	With(ctx, base).Info().Msg("hello")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if line["trace_id"] != "trace-1" || line["event"] != "photo" || line["tg_id"] != float64(42) {
		t.Errorf("missing context fields: %v", line)
	}
	if TraceID(ctx) != "trace-1" {
		t.Errorf("expected TraceID to read back trace-1")
	}
}

func TestRedact(t *testing.T) {
	cases := []struct {
		in   string
		dev  bool
		want string
	}{
		{"short", false, "***"},
		{"transferencia", false, "tran...ia"},
		{"transferencia", true, "transferencia"},
		{"depósitoBancario", false, "depó...io"},
	}
	for _, tc := range cases {
		if got := Redact(tc.in, tc.dev); got != tc.want {
			t.Errorf("Redact(%q,%v) = %q, want %q", tc.in, tc.dev, got, tc.want)
		}
	}
}
