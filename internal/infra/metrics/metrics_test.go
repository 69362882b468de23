//go:build !integration

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorsRegisterAndRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegisterWith(reg)
	// A second call must be a no-op.
	MustRegisterWith(reg)

	IncReceipt("Accepted", true)
	IncReceipt("accepted", true)
	if got := testutil.ToFloat64(receiptsTotal.WithLabelValues("accepted", "true")); got != 2 {
		t.Errorf("expected 2 accepted receipts, got %v", got)
	}

	SetStoreSize("sessions", 5)
	if got := testutil.ToFloat64(storeSize.WithLabelValues("sessions")); got != 5 {
		t.Errorf("expected sessions gauge 5, got %v", got)
	}

	ObserveExtraction("tesseract", 120*time.Millisecond, false)
	if n := testutil.CollectAndCount(extractionLatencyMs); n == 0 {
		t.Error("expected extraction histogram to have samples")
	}

	IncDialogEvent("")
	if got := testutil.ToFloat64(dialogEventsTotal.WithLabelValues("unknown")); got != 1 {
		t.Errorf("expected empty kind to be normalised to unknown, got %v", got)
	}
}
