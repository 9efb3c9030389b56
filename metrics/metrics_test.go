package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCodecOperationCountsByStatus(t *testing.T) {
	c := NewCollector("test_codec")

	c.ObserveCodecOperation("wkb.read", time.Millisecond, nil)
	c.ObserveCodecOperation("wkb.read", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(c.codecOperations.WithLabelValues("wkb.read", "success")); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.codecOperations.WithLabelValues("wkb.read", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestTimerRecordsDuration(t *testing.T) {
	c := NewCollector("test_timer")
	stop := c.Timer("blob.decode")
	time.Sleep(time.Millisecond)
	stop(nil)

	if got := testutil.ToFloat64(c.codecOperations.WithLabelValues("blob.decode", "success")); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
}

func TestSetAuditDiscrepancies(t *testing.T) {
	c := NewCollector("test_audit")
	c.SetAuditDiscrepancies(3)

	if got := testutil.ToFloat64(c.auditDiscrepancies); got != 3 {
		t.Errorf("audit discrepancies = %v, want 3", got)
	}
}

func TestObserveSQLFunctionCall(t *testing.T) {
	c := NewCollector("test_sqlfn")
	c.ObserveSQLFunctionCall("ST_AsText", nil)

	if got := testutil.ToFloat64(c.sqlFunctionCalls.WithLabelValues("ST_AsText", "success")); got != 1 {
		t.Errorf("sql function call count = %v, want 1", got)
	}
}
