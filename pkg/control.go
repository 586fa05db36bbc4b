package decoder

import (
	"time"
)

// ControlEventTracker accumulates the run-control bookkeeping fed to it
// by the decoders: prestart run number/type/time, go and pause cycles,
// and the end-of-run record. One tracker lives inside each decoder
// instance and is reset whenever a prestart event arrives.
type ControlEventTracker struct {
	foundControlEvents bool

	prestartTime      uint32
	prestartRunNumber uint32
	runType           uint32

	startTime uint32

	endTime       uint32
	endEventCount uint32

	goTime       []uint32
	goEventCount []uint32

	pauseTime       []uint32
	pauseEventCount []uint32
}

// Reset clears all control parameters, as at the start of a new run.
func (t *ControlEventTracker) Reset() {
	*t = ControlEventTracker{}
}

// ProcessControlEvent routes a classified control event to the matching
// handler. The buffer starts at the first payload word after the event
// header. Unknown event types are ignored; this is not an error, the
// caller runs every non-physics CODA event through here.
func (t *ControlEventTracker) ProcessControlEvent(evtype uint32, buffer []uint32) {
	if len(buffer) < 3 {
		logger.Warnf("Control event type %d with short payload (%d words); ignored",
			evtype, len(buffer))
		return
	}
	localTime := buffer[0]
	evCount := buffer[2]
	switch evtype {
	case SYNC_EVENT:
		t.ProcessSync(localTime, buffer[1])
	case PRESTART_EVENT:
		t.ProcessPrestart(localTime, buffer[1], buffer[2])
	case GO_EVENT:
		t.ProcessGo(localTime, evCount)
	case PAUSE_EVENT:
		t.ProcessPause(localTime, evCount)
	case END_EVENT:
		t.ProcessEnd(localTime, evCount)
	default:
		//  This isn't a control event.  Do nothing.
	}
}

func (t *ControlEventTracker) ProcessSync(localTime uint32, statusCode uint32) {
	t.foundControlEvents = true
	// To be implemented...
}

// ProcessPrestart records the run number, run type and prestart time.
// A second prestart in the same stream resets the tracker; this is
// logged but not treated as an error.
func (t *ControlEventTracker) ProcessPrestart(localTime, runNumber, runType uint32) {
	if t.foundControlEvents {
		logger.Infof("Prestart for run %d while control events already recorded; resetting",
			runNumber)
	}
	t.Reset()
	t.foundControlEvents = true
	t.prestartTime = localTime
	t.prestartRunNumber = runNumber
	t.runType = runType
}

func (t *ControlEventTracker) ProcessGo(localTime, evtCount uint32) {
	t.foundControlEvents = true
	t.goTime = append(t.goTime, localTime)
	t.goEventCount = append(t.goEventCount, evtCount)
	if len(t.goTime) == 1 {
		t.startTime = t.goTime[0]
	}
}

func (t *ControlEventTracker) ProcessPause(localTime, evtCount uint32) {
	t.foundControlEvents = true
	t.pauseTime = append(t.pauseTime, localTime)
	t.pauseEventCount = append(t.pauseEventCount, evtCount)
}

func (t *ControlEventTracker) ProcessEnd(localTime, evtCount uint32) {
	t.foundControlEvents = true
	t.endTime = localTime
	t.endEventCount = evtCount
}

func (t *ControlEventTracker) FoundControlEvents() bool { return t.foundControlEvents }

func (t *ControlEventTracker) GetRunNumber() uint32     { return t.prestartRunNumber }
func (t *ControlEventTracker) GetRunType() uint32       { return t.runType }
func (t *ControlEventTracker) GetPrestartTime() uint32  { return t.prestartTime }
func (t *ControlEventTracker) GetStartTime() uint32     { return t.startTime }
func (t *ControlEventTracker) GetEndTime() uint32       { return t.endTime }
func (t *ControlEventTracker) GetEndEventCount() uint32 { return t.endEventCount }

func (t *ControlEventTracker) GetNumberGo() int    { return len(t.goTime) }
func (t *ControlEventTracker) GetNumberPause() int { return len(t.pauseTime) }

// GetGoTime returns the time of the index-th go event; with no index it
// returns the most recent one. Out-of-range lookups return 0.
func (t *ControlEventTracker) GetGoTime(index ...int) uint32 {
	return lookup(t.goTime, index)
}

func (t *ControlEventTracker) GetGoEventCount(index ...int) uint32 {
	return lookup(t.goEventCount, index)
}

func (t *ControlEventTracker) GetPauseTime(index ...int) uint32 {
	return lookup(t.pauseTime, index)
}

func (t *ControlEventTracker) GetPauseEventCount(index ...int) uint32 {
	return lookup(t.pauseEventCount, index)
}

func lookup(values []uint32, index []int) uint32 {
	i := len(values) - 1
	if len(index) > 0 {
		i = index[0]
	}
	if i < 0 || i >= len(values) {
		return 0
	}
	return values[i]
}

// GetStartUnixTime converts the stored start time to wall-clock time.
func (t *ControlEventTracker) GetStartUnixTime() time.Time {
	return time.Unix(int64(t.startTime), 0)
}

func (t *ControlEventTracker) GetEndUnixTime() time.Time {
	return time.Unix(int64(t.endTime), 0)
}

// GetStartSQLTime returns the run start time formatted for the run database.
func (t *ControlEventTracker) GetStartSQLTime() string {
	return t.GetStartUnixTime().UTC().Format("2006-01-02 15:04:05")
}

func (t *ControlEventTracker) GetEndSQLTime() string {
	return t.GetEndUnixTime().UTC().Format("2006-01-02 15:04:05")
}

// ReportRunSummary logs the control event bookkeeping collected during
// the run. Reproducible purely from the stored records.
func (t *ControlEventTracker) ReportRunSummary() {
	if !t.foundControlEvents {
		return
	}
	logger.Infof("Run Number:         %d", t.prestartRunNumber)
	logger.Infof("Run Type:           %d", t.runType)
	logger.Infof("PreStart Time:      %d", t.prestartTime)
	logger.Infof("Start Time:         %d", t.startTime)
	logger.Infof("End Time:           %d", t.endTime)
	logger.Infof("End Event Counter:  %d", t.endEventCount)
	if t.endTime > 0 && t.startTime > 0 {
		logger.Infof("Run Duration (sec): %d", t.endTime-t.startTime)
	} else {
		logger.Infof("Run Duration (sec): n/a")
	}
	logger.Infof("SQL-Formatted Start Time: %s", t.GetStartSQLTime())
	logger.Infof("SQL-Formatted End Time:   %s", t.GetEndSQLTime())
	logger.Infof("Number of Pauses during this run: %d", len(t.pauseTime))
	for i := range t.pauseTime {
		if i+1 < len(t.goTime) {
			logger.Infof("Pause Number: %d; Events so far: %d; Runtime since start (sec): %d; Duration of Pause (sec): %d",
				i, t.pauseEventCount[i], t.pauseTime[i]-t.startTime, t.goTime[i+1]-t.pauseTime[i])
		} else {
			logger.Infof("Pause Number: %d; Events so far: %d; Runtime since start (sec): %d",
				i, t.pauseEventCount[i], t.pauseTime[i]-t.startTime)
		}
	}
}
