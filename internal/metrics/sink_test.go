package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopSink_DiscardsSilently(t *testing.T) {
	var s NopSink
	assert.NotPanics(t, func() { s.RecordPoint(Point{Name: InferenceDuration, Value: 1}) })
}

func TestRecord_NilSinkIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { Record(nil, InferenceDuration, 1, nil) })
}

func TestMemorySink_RecordsAndFindsLast(t *testing.T) {
	sink := NewMemorySink()
	Record(sink, InferenceDuration, 12.5, map[string]string{"stage": "det"})
	Record(sink, InferenceDuration, 30.0, map[string]string{"stage": "rec"})

	points := sink.Points()
	require.Len(t, points, 2)

	last, ok := sink.Last(InferenceDuration)
	require.True(t, ok)
	assert.Equal(t, 30.0, last.Value)
	assert.Equal(t, "rec", last.Tags["stage"])

	_, ok = sink.Last(InferenceCounter)
	assert.False(t, ok)
}

func TestReportProcess_EmitsMemoryAndCPUPoints(t *testing.T) {
	sink := NewMemorySink()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	ReportProcess(ctx, sink, 5*time.Millisecond)
	<-ctx.Done()

	_, ok := sink.Last(ProcessMemoryWorkingSet)
	assert.True(t, ok)
	_, ok = sink.Last(ProcessCPUUsageCores)
	assert.True(t, ok)
}
