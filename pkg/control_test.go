package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlEventTrackerRunCycle(t *testing.T) {
	var tracker ControlEventTracker
	assert.False(t, tracker.FoundControlEvents())

	tracker.ProcessPrestart(1000, 4711, 2)
	tracker.ProcessGo(1010, 0)
	tracker.ProcessPause(1100, 500)
	tracker.ProcessGo(1200, 500) // beam is back
	tracker.ProcessEnd(1500, 1200)

	assert.True(t, tracker.FoundControlEvents())
	assert.Equal(t, uint32(4711), tracker.GetRunNumber())
	assert.Equal(t, uint32(2), tracker.GetRunType())
	assert.Equal(t, uint32(1000), tracker.GetPrestartTime())
	assert.Equal(t, uint32(1010), tracker.GetStartTime(), "start time is the first go")
	assert.Equal(t, uint32(1500), tracker.GetEndTime())
	assert.Equal(t, uint32(1200), tracker.GetEndEventCount())

	assert.Equal(t, 2, tracker.GetNumberGo())
	assert.Equal(t, 1, tracker.GetNumberPause())
	assert.Equal(t, uint32(1010), tracker.GetGoTime(0))
	assert.Equal(t, uint32(1200), tracker.GetGoTime(1))
	assert.Equal(t, uint32(1200), tracker.GetGoTime(), "no index means most recent")
	assert.Equal(t, uint32(500), tracker.GetGoEventCount())
	assert.Equal(t, uint32(1100), tracker.GetPauseTime())
	assert.Equal(t, uint32(500), tracker.GetPauseEventCount(0))

	// Out-of-range lookups return 0 instead of failing.
	assert.Equal(t, uint32(0), tracker.GetGoTime(2))
	assert.Equal(t, uint32(0), tracker.GetPauseTime(-1))
}

func TestControlEventTrackerPrestartResets(t *testing.T) {
	var tracker ControlEventTracker
	tracker.ProcessPrestart(1000, 100, 1)
	tracker.ProcessGo(1010, 0)
	tracker.ProcessEnd(1100, 50)

	tracker.ProcessPrestart(2000, 101, 1)
	assert.Equal(t, uint32(101), tracker.GetRunNumber())
	assert.Equal(t, 0, tracker.GetNumberGo())
	assert.Equal(t, uint32(0), tracker.GetEndTime())
	assert.Equal(t, uint32(0), tracker.GetStartTime())
}

func TestProcessControlEventRouting(t *testing.T) {
	tests := []struct {
		name   string
		evtype uint32
		buffer []uint32
		check  func(t *testing.T, tracker *ControlEventTracker)
	}{
		{
			name:   "prestart",
			evtype: PRESTART_EVENT,
			buffer: []uint32{1000, 4711, 2},
			check: func(t *testing.T, tracker *ControlEventTracker) {
				assert.Equal(t, uint32(4711), tracker.GetRunNumber())
				assert.Equal(t, uint32(2), tracker.GetRunType())
				assert.Equal(t, uint32(1000), tracker.GetPrestartTime())
			},
		},
		{
			name:   "go",
			evtype: GO_EVENT,
			buffer: []uint32{1010, 0, 25},
			check: func(t *testing.T, tracker *ControlEventTracker) {
				assert.Equal(t, 1, tracker.GetNumberGo())
				assert.Equal(t, uint32(1010), tracker.GetGoTime())
				assert.Equal(t, uint32(25), tracker.GetGoEventCount())
			},
		},
		{
			name:   "end",
			evtype: END_EVENT,
			buffer: []uint32{1500, 0, 1200},
			check: func(t *testing.T, tracker *ControlEventTracker) {
				assert.Equal(t, uint32(1500), tracker.GetEndTime())
				assert.Equal(t, uint32(1200), tracker.GetEndEventCount())
			},
		},
		{
			name:   "not a control event",
			evtype: EPICS_EVTYPE,
			buffer: []uint32{1, 2, 3},
			check: func(t *testing.T, tracker *ControlEventTracker) {
				assert.False(t, tracker.FoundControlEvents())
			},
		},
		{
			name:   "short payload ignored",
			evtype: GO_EVENT,
			buffer: []uint32{1010},
			check: func(t *testing.T, tracker *ControlEventTracker) {
				assert.False(t, tracker.FoundControlEvents())
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var tracker ControlEventTracker
			tracker.ProcessControlEvent(tc.evtype, tc.buffer)
			tc.check(t, &tracker)
		})
	}
}

func TestSQLTimeFormatting(t *testing.T) {
	var tracker ControlEventTracker
	tracker.ProcessGo(0, 0)
	assert.Equal(t, "1970-01-01 00:00:00", tracker.GetStartSQLTime())
}
