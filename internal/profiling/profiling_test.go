package profiling

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackAndReset(t *testing.T) {
	ResetFrame()
	stop := Track("test.Section")
	time.Sleep(time.Millisecond)
	stop()

	snap := Snapshot()
	assert.GreaterOrEqual(t, snap["test.Section"], time.Millisecond)
	assert.GreaterOrEqual(t, SumWithPrefix("test."), time.Millisecond)
	assert.True(t, strings.HasPrefix(TopN(1), "test.Section:"))

	ResetFrame()
	assert.Empty(t, Snapshot())
}

func TestCountersSurviveFrameReset(t *testing.T) {
	before := Counter("test.Counter")
	Add("test.Counter", 3)
	ResetFrame()
	Add("test.Counter", 2)
	assert.Equal(t, before+5, Counter("test.Counter"))
}

func TestFormatMs(t *testing.T) {
	assert.Equal(t, "4ms", formatMs(4*time.Millisecond))
	assert.Equal(t, "2.5ms", formatMs(2500*time.Microsecond))
}

func TestExporterPublishesCounterDeltas(t *testing.T) {
	e := NewExporter()
	base := Counter("test.Exported")
	Add("test.Exported", 4)
	e.Publish()
	e.Publish()
	Add("test.Exported", 1)
	e.Publish()

	got := testutil.ToFloat64(e.counts.WithLabelValues("test.Exported"))
	assert.Equal(t, float64(base+5), got)
}
