package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gridwatch/meshtap/internal/link"
	"github.com/gridwatch/meshtap/internal/observer"
	"github.com/gridwatch/meshtap/internal/pvapp"
	"github.com/gridwatch/meshtap/internal/transport"
)

func TestPublishLink(t *testing.T) {
	before := testutil.ToFloat64(LinkOutcomes.WithLabelValues("frame"))
	PublishLink(link.Counters{Frames: 3, Runts: 1})
	if got := testutil.ToFloat64(LinkOutcomes.WithLabelValues("frame")); got != before+3 {
		t.Errorf("got %v, want %v", got, before+3)
	}
}

func TestPublishTransport(t *testing.T) {
	before := testutil.ToFloat64(TransportOutcomes.WithLabelValues("receive_response"))
	PublishTransport(transport.Counters{ReceiveResponses: 5})
	if got := testutil.ToFloat64(TransportOutcomes.WithLabelValues("receive_response")); got != before+5 {
		t.Errorf("got %v, want %v", got, before+5)
	}
}

func TestPublishPVApp(t *testing.T) {
	before := testutil.ToFloat64(PVAppOutcomes.WithLabelValues("power_report"))
	PublishPVApp(pvapp.Counters{PowerReports: 2})
	if got := testutil.ToFloat64(PVAppOutcomes.WithLabelValues("power_report")); got != before+2 {
		t.Errorf("got %v, want %v", got, before+2)
	}
}

func TestPublishObserver(t *testing.T) {
	before := testutil.ToFloat64(ObserverOutcomes.WithLabelValues("slot_clock_rebuild"))
	PublishObserver(observer.Counters{SlotClockRebuilds: 1})
	if got := testutil.ToFloat64(ObserverOutcomes.WithLabelValues("slot_clock_rebuild")); got != before+1 {
		t.Errorf("got %v, want %v", got, before+1)
	}
}
