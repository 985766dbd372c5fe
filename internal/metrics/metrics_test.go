package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRow(t *testing.T) {
	before := testutil.ToFloat64(importRows.WithLabelValues(OutcomeFailed))
	RecordRow(OutcomeFailed)
	RecordRow(OutcomeFailed)
	if got := testutil.ToFloat64(importRows.WithLabelValues(OutcomeFailed)); got != before+2 {
		t.Errorf("Expected %v, got %v", before+2, got)
	}
}

func TestRecordRows(t *testing.T) {
	before := testutil.ToFloat64(importRows.WithLabelValues(OutcomeMapped))
	RecordRows(OutcomeMapped, 3)
	RecordRows(OutcomeMapped, 0)
	if got := testutil.ToFloat64(importRows.WithLabelValues(OutcomeMapped)); got != before+3 {
		t.Errorf("Expected %v, got %v", before+3, got)
	}
}

func TestRecordFileAndDuplicates(t *testing.T) {
	before := testutil.ToFloat64(importFiles.WithLabelValues(FileImported))
	RecordFile(FileImported, 25*time.Millisecond)
	if got := testutil.ToFloat64(importFiles.WithLabelValues(FileImported)); got != before+1 {
		t.Errorf("Expected %v, got %v", before+1, got)
	}

	before = testutil.ToFloat64(duplicateChecks.WithLabelValues("exact"))
	RecordDuplicateCheck(true)
	if got := testutil.ToFloat64(duplicateChecks.WithLabelValues("exact")); got != before+1 {
		t.Errorf("Expected %v, got %v", before+1, got)
	}
}
