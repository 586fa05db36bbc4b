package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRunSummaryRecord(t *testing.T) {
	var tracker ControlEventTracker
	tracker.ProcessPrestart(990, 4711, 2)
	tracker.ProcessGo(1000, 0)
	tracker.ProcessPause(1100, 500)
	tracker.ProcessGo(1200, 500)
	tracker.ProcessEnd(1500, 1200)

	record := NewRunSummaryRecord(&tracker)
	assert.Equal(t, uint32(4711), record.RunNumber)
	assert.Equal(t, uint32(2), record.RunType)
	assert.Equal(t, "1970-01-01 00:16:40", record.StartTime)
	assert.Equal(t, "1970-01-01 00:25:00", record.EndTime)
	assert.Equal(t, uint32(1200), record.EndEventCount)
	assert.Equal(t, 2, record.NumberGo)
	assert.Equal(t, 1, record.NumberPause)
}
