package decoder

import (
	"errors"
	"fmt"
	"io"
)

// Coda3Decoder decodes the banked CODA 3 protocol, where physics events
// carry a trigger bank with per-block event metadata.
type Coda3Decoder struct {
	eventDecoder

	tsEvType    uint32
	blockSize   uint32
	evtTime     uint64 // event time (for CODA 3 this is a 250 MHz clock)
	triggerBits uint32 // (not completely sure) the TS# trigger for the TS

	// tsROCNumber is the crate number of the trigger supervisor.
	// The original analyzer fills this from a crate map it is not
	// using, so it is currently always 0.
	tsROCNumber uint32

	tbank TriggerBank
}

func NewCoda3Decoder() *Coda3Decoder {
	d := &Coda3Decoder{}
	d.tbank.Clear()
	return d
}

// DecodeEventIDBank determines whether the buffer holds a physics event,
// a control event, or some other event, and fills the event ID fields.
// Always returns CODA_OK; trigger bank failures are recovered by
// skipping the whole event, and unclassifiable buffers are reported
// through the state flags.
func (d *Coda3Decoder) DecodeEventIDBank(buffer []uint32) int {
	d.physicsEventFlag = false
	d.controlEventFlag = false

	if len(buffer) == 0 || buffer[0] == 0 {
		// Empty buffer; pretend there is a single null word, as for CODA 2.
		d.evtLength = 1
		d.wordsSoFar = 1
		d.evtType = 0
		d.evtTag = 0
		d.bankDataType = 0
		d.evtNumber = 0
		d.tbank.Clear()
		d.tsEvType = 0
		d.evtTime = 0
		d.triggerBits = 0
		d.blockSize = 0
		d.fragLength = 0
		return CODA_OK
	}

	// General event information
	d.evtLength = buffer[0] + 1 // in longwords (4 bytes)
	d.evtType = 0
	d.evtTag = 0
	d.bankDataType = 0

	// Prep trigger bank variables
	d.tbank.Clear()
	d.tsEvType = 0
	d.evtTime = 0
	d.triggerBits = 0
	d.blockSize = 0

	if len(buffer) < 2 {
		logger.Errorf("Event with declared length %d in a %d-word buffer",
			d.evtLength, len(buffer))
		d.evtNumber = 0
		d.wordsSoFar = d.evtLength
		d.fragLength = 0
		return CODA_OK
	}

	// Start filling data
	d.evtTag = BankTag(buffer[1])
	d.bankDataType = BankDataType(buffer[1])
	d.blockSize = BankNum(buffer[1])

	if d.blockSize > 1 {
		logger.Warnf("MultiBlock is not properly supported! block_size = %d", d.blockSize)
	}

	// Determine the event type by the event tag
	d.evtType = d.interpretBankTag(d.evtTag)
	d.wordsSoFar = 2
	if d.evtTag < CODA3_RESERVED_TAG {
		// User event
		d.printUserEvent(buffer)
	} else if d.controlEventFlag {
		d.evtNumber = 0
		d.controlEvents.ProcessControlEvent(d.evtType, clampPayload(buffer, d.wordsSoFar, d.evtLength))
	} else if d.physicsEventFlag {
		if err := d.trigBankDecode(buffer); err != nil {
			d.trigBankErrorHandler(err)
		} else {
			d.evtNumber = uint32(d.tbank.EvtNum())
			d.wordsSoFar = 2 + d.tbank.Len()
		}
	} else {
		// Not a control event, user event, nor physics event. Not sure
		// what it is. Arbitrarily set the event type to the tag; the
		// first two words have been examined.
		logger.Warnf("Undetermined Event Type")
		d.dumpBuffer(buffer)
		d.evtType = d.evtTag
		d.evtNumber = 0
	}

	d.fragLength = d.evtLength - d.wordsSoFar
	logger.Debugf("buffer[0-1] 0x%x 0x%x ; Event Number: %d; Length: %d; Tag: 0x%x; Bank data type: 0x%x; Evt type: 0x%x; fWordsSoFar %d",
		buffer[0], buffer[1], d.evtNumber, d.evtLength, d.evtTag,
		d.bankDataType, d.evtType, d.wordsSoFar)

	return CODA_OK
}

// interpretBankTag classifies the event: a CODA reserved tag is either a
// control event, a physics event (type fixed at 1 for CODA 3), or an
// undefined reserved type; anything below 0xff00 is a user event and the
// tag itself is the type.
func (d *Coda3Decoder) interpretBankTag(tag uint32) uint32 {
	var evtyp uint32
	if tag >= CODA3_RESERVED_TAG { // CODA reserved bank type
		switch tag {
		case CODA3_PRESTART_TAG:
			evtyp = PRESTART_EVENT
			d.controlEventFlag = true
		case CODA3_GO_TAG:
			evtyp = GO_EVENT
			d.controlEventFlag = true
		case CODA3_END_TAG:
			evtyp = END_EVENT
			d.controlEventFlag = true
		case CODA3_PHYS_TAG1, CODA3_PHYS_TAG2, CODA3_PHYS_TAG3, CODA3_PHYS_TAG4:
			evtyp = 1 // for CODA 3.* physics events are type 1
			d.physicsEventFlag = true
		default: // Undefined CODA 3 event type
			logger.Warnf("Coda3Decoder:: WARNING: Undefined CODA 3 event type, tag = 0x%x", tag)
			evtyp = 0
			//FIXME evtyp = 0 could also be a user event type ...
		}
	} else { // User event type
		evtyp = tag // EPICS, ROC CONFIG, ET-insertions, etc.
	}
	return evtyp
}

// trigBankDecode unpacks the trigger bank of a physics event and loads
// the scalars for the first event in the block. Returns a FormatError
// for malformed banks; the caller converts any failure into the
// skip-whole-event recovery.
func (d *Coda3Decoder) trigBankDecode(buffer []uint32) error {
	if d.blockSize == 0 {
		return formatErrorf("physics event %d with block size 0", d.evtNumber)
	}
	if uint64(d.evtLength) > uint64(len(buffer)) {
		return formatErrorf("event length %d exceeds the %d words available",
			d.evtLength, len(buffer))
	}
	if _, err := d.tbank.Fill(buffer[d.wordsSoFar:d.evtLength], d.blockSize, d.tsROCNumber); err != nil {
		return err
	}
	// Copy pertinent data to member variables for faster retrieval
	d.loadTrigBankInfo(0) // Load data for first event in block
	return nil
}

// loadTrigBankInfo loads tsEvType, evtTime and triggerBits for the i-th
// event in the event block. i must be less than the block size. The
// event time comes from the timestamp array when present, otherwise
// from the TSROC segment; when neither matched, the scalars keep their
// cleared values.
func (d *Coda3Decoder) loadTrigBankInfo(i uint32) int {
	if i >= d.tbank.BlockSize() {
		return -1
	}
	if evType, ok := d.tbank.eventType(i); ok {
		d.tsEvType = uint32(evType)
	}
	if ts, ok := d.tbank.timeStamp(i); ok {
		d.evtTime = ts // event time (4ns clock, I think)
	} else if ts, ok := d.tbank.tsrocTime(i); ok {
		d.evtTime = ts
	}
	if bits, ok := d.tbank.triggerBits(i); ok {
		// Only the lower 6 bits seem to contain the actual bits
		d.triggerBits = bits
	}
	return 0
}

// trigBankErrorHandler recovers from a trigger bank decode failure:
// log the failure class, clear all physics state, and move the cursor
// to the end of the event so the caller skips it entirely. There is no
// partial-bank recovery and no retry; a malformed event is permanently
// unrecoverable at the word buffer level.
func (d *Coda3Decoder) trigBankErrorHandler(err error) {
	switch {
	case err == nil:
		logger.Warnf("trigBankDecode() returned HED_OK... why are we here?")
	case errors.Is(err, ErrInvalidBlockSize):
		logger.Errorf("trigBankDecode() returned HED_FATAL: %v", err)
	case IsFormatError(err):
		logger.Errorf("trigBankDecode() returned HED_ERR: %v", err)
	default:
		logger.Errorf("trigBankDecode() returned an Unknown Error: %v", err)
	}
	// Act as if we are at the end of the event and set everything to false (0)
	logger.Warnf("Skipping to the end of the event and setting everything to false (0)!")
	d.physicsEventFlag = false
	d.controlEventFlag = false

	d.evtType = 0
	d.evtTag = 0
	d.bankDataType = 0
	d.tbank.Clear()
	d.tsEvType = 0
	d.evtTime = 0
	d.triggerBits = 0
	d.blockSize = 0

	d.wordsSoFar = d.evtLength
}

// printUserEvent logs user events (non-physics and non-control),
// dumping the payload of ET-inserted text data verbatim.
func (d *Coda3Decoder) printUserEvent(buffer []uint32) {
	printIt := false

	switch d.evtType {
	case EPICS_EVTYPE:
		// EPICS data; too frequent to dump.
	case PRESCALE_EVTYPE:
		logger.Infof("Prescale data")
		printIt = true
	case DAQCONFIG_FILE1:
		logger.Infof("DAQ config file 1")
		printIt = true
	case DAQCONFIG_FILE2:
		logger.Infof("DAQ config file 2")
		printIt = true
	case SCALER_EVTYPE:
		logger.Infof("LHRS scaler event")
		printIt = true
	case SBSSCALER_EVTYPE:
		logger.Infof("SBS scaler event")
		printIt = true
	case HV_DATA_EVTYPE:
		logger.Infof("High voltage data event")
		printIt = true
	default:
		// something else ?
		logger.Warnf("--- Special event type: %d ---", d.evtTag)
	}
	if printIt {
		// These are character data. The dump looks exactly like the
		// text file that was inserted.
		end := d.evtLength
		if end > uint32(len(buffer)) {
			end = uint32(len(buffer))
		}
		chars := make([]byte, 0, 4*end)
		for _, word := range buffer[:end] {
			chars = append(chars,
				byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
		}
		logger.Infof("Dump of event buffer. Len = %d", 4*d.evtLength)
		logger.Info(string(chars))
	}
}

func (d *Coda3Decoder) dumpBuffer(buffer []uint32) {
	end := d.evtLength
	if end > uint32(len(buffer)) {
		end = uint32(len(buffer))
	}
	for index := uint32(0); index < end; index += 4 {
		line := ""
		for j := index; j < index+4 && j < end; j++ {
			line += fmt.Sprintf("\t0x%08x", buffer[j])
		}
		logger.Debug(line)
	}
}

// EncodePHYSEventHeader builds a minimal CODA 3 physics event header
// with a synthetic trigger bank: a one-event block with zeroed upper
// 32 bits of the event number and time, and one 3-word mock segment
// per requested ROC.
func (d *Coda3Decoder) EncodePHYSEventHeader(rocList []uint32) []uint32 {
	localTime := LocalTime()
	rocCount := uint32(len(rocList))
	wordCount := 8 + rocCount*3
	d.evtNumber++

	header := []uint32{
		0xFF501001,
		wordCount,             // word count for the trigger bank
		0xFF212000 | rocCount, // # of ROCs
		0x010a0004,
		// the event number is held by a 64 bit ... for now the upper 32 bits are 0
		d.evtNumber,
		0x0,
		// the event time is held by a 64 bit (bits 0-48 is the time) ... upper 32 bits are 0
		localTime,
		0x0,
		0x01850001,
		0xc0da, // TS# trigger
	}
	for _, roc := range rocList {
		header = append(header, (roc<<24)|0x010002)
		header = append(header, 0x4D6F636B) // ASCII for 'MOCK'
		header = append(header, 0x4D6F636B) // ASCII for 'MOCK'
	}
	return header
}

// EncodePrestartEventHeader fills a 5-word prestart header and records
// the prestart in the control event tracker.
func (d *Coda3Decoder) EncodePrestartEventHeader(buffer []uint32, runNumber, runType, localTime uint32) {
	buffer[0] = 4 // Prestart event length
	buffer[1] = (CODA3_PRESTART_TAG << 16) | (0x01 << 8)
	buffer[2] = localTime
	buffer[3] = runNumber
	buffer[4] = runType
	d.controlEvents.ProcessPrestart(localTime, runNumber, runType)
}

func (d *Coda3Decoder) EncodeGoEventHeader(buffer []uint32, eventCount, localTime uint32) {
	buffer[0] = 4 // Go event length
	buffer[1] = (CODA3_GO_TAG << 16) | (0x01 << 8)
	buffer[2] = localTime
	buffer[3] = 0 // unused
	buffer[4] = eventCount
	d.controlEvents.ProcessGo(localTime, eventCount)
}

func (d *Coda3Decoder) EncodePauseEventHeader(buffer []uint32, eventCount, localTime uint32) {
	buffer[0] = 4 // Pause event length
	buffer[1] = (CODA3_PAUSE_TAG << 16) | (0x01 << 8)
	buffer[2] = localTime
	buffer[3] = 0 // unused
	buffer[4] = eventCount
	d.controlEvents.ProcessPause(localTime, eventCount)
}

func (d *Coda3Decoder) EncodeEndEventHeader(buffer []uint32, eventCount, localTime uint32) {
	buffer[0] = 4 // End event length
	buffer[1] = (CODA3_END_TAG << 16) | (0x01 << 8)
	buffer[2] = localTime
	buffer[3] = 0 // unused
	buffer[4] = eventCount
	d.controlEvents.ProcessEnd(localTime, eventCount)
}

// GetEvTime returns the event time of the last decoded physics event.
func (d *Coda3Decoder) GetEvTime() uint64 { return d.evtTime }

func (d *Coda3Decoder) SetEvTime(evTime uint64) { d.evtTime = evTime }

// GetTSEvType returns the trigger supervisor event type of the last
// decoded physics event.
func (d *Coda3Decoder) GetTSEvType() uint32 { return d.tsEvType }

// GetTriggerBits returns the trigger latch bits of the last decoded
// physics event, when the TSROC segment carried them.
func (d *Coda3Decoder) GetTriggerBits() uint32 { return d.triggerBits }

// GetBlockSize returns the block size of the last decoded event.
func (d *Coda3Decoder) GetBlockSize() uint32 { return d.blockSize }

// SetTSROCNumber configures the crate number of the trigger supervisor.
func (d *Coda3Decoder) SetTSROCNumber(tsroc uint32) { d.tsROCNumber = tsroc }

// TriggerBankObject exposes the decoded trigger bank of the last
// physics event.
func (d *Coda3Decoder) TriggerBankObject() *TriggerBank { return &d.tbank }

// PrintDecoderInfo dumps the current decode state for diagnostics.
func (d *Coda3Decoder) PrintDecoderInfo(out io.Writer) {
	fmt.Fprintf(out, "Event Number: %d; Length: %d; Tag: 0x%x; Bank data type: 0x%x Evt type: 0x%x; fWordsSoFar %d\n",
		d.evtNumber, d.evtLength, d.evtTag, d.bankDataType, d.evtType, d.wordsSoFar)
	d.printDecoderInfo(out)
}
