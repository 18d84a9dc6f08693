package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveReceive(t *testing.T) {
	ObserveReceive("m1", 2, 10*time.Millisecond, nil)
	ObserveReceive("m1", 1, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(promDeliveries.WithLabelValues("m1", "ok")); got != 1 {
		t.Fatalf("ok deliveries = %v", got)
	}
	if got := testutil.ToFloat64(promDeliveries.WithLabelValues("m1", "error")); got != 1 {
		t.Fatalf("error deliveries = %v", got)
	}
	if got := testutil.ToFloat64(promEvents.WithLabelValues("m1")); got != 3 {
		t.Fatalf("events = %v", got)
	}
}

func TestSetWorking(t *testing.T) {
	SetWorking("m2", true)
	if got := testutil.ToFloat64(promWorking.WithLabelValues("m2")); got != 1 {
		t.Fatalf("working = %v", got)
	}
	SetWorking("m2", false)
	if got := testutil.ToFloat64(promWorking.WithLabelValues("m2")); got != 0 {
		t.Fatalf("working = %v", got)
	}
}
