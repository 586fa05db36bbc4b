package decoder

import (
	"fmt"
	"io"
	"time"
)

// Coda2Decoder decodes the older, non-banked-trigger CODA 2 protocol.
// Event banks are marked by 0xCC in the low byte of the header word and
// the event type is simply the bank tag.
type Coda2Decoder struct {
	eventDecoder

	idBankNum uint32
	evtClass  uint32
	statSum   uint32
}

func NewCoda2Decoder() *Coda2Decoder {
	return &Coda2Decoder{}
}

// DecodeEventIDBank determines whether the buffer holds a physics event,
// a control event, or some other event, and fills the event ID fields.
// Always returns CODA_OK; an unclassifiable buffer is a valid outcome
// reported through the state flags so the caller can still skip it.
func (d *Coda2Decoder) DecodeEventIDBank(buffer []uint32) int {
	d.physicsEventFlag = false
	d.controlEventFlag = false

	if len(buffer) >= 5 {
		logger.Debugf("Coda2Decoder::DecodeEventIDBank: %x %x %x %x %x",
			buffer[0], buffer[1], buffer[2], buffer[3], buffer[4])
	}

	if len(buffer) == 0 || buffer[0] == 0 {
		/*****************************************************************
		 *  This buffer is empty.                                        *
		 *****************************************************************/
		d.evtLength = 1  //  Pretend that there is one word.
		d.wordsSoFar = 1 //  Mark that we've read the word already.
		d.evtType = 0
		d.evtTag = 0
		d.bankDataType = 0
		d.idBankNum = 0
		d.evtNumber = 0
		d.evtClass = 0
		d.statSum = 0
	} else {
		/*****************************************************************
		 *  This buffer contains data; fill the event ID parameters.     *
		 *****************************************************************/
		//  First word is the number of long-words in the buffer.
		d.evtLength = buffer[0] + 1

		if len(buffer) < 2 {
			//  Declared length says there is a header word, but the
			//  buffer ends first. Report the buffer as unclassified
			//  and mark it fully read so the caller skips it.
			logger.Errorf("Event with declared length %d in a %d-word buffer",
				d.evtLength, len(buffer))
			d.evtType = 0
			d.evtTag = 0
			d.bankDataType = 0
			d.idBankNum = 0
			d.evtNumber = 0
			d.evtClass = 0
			d.statSum = 0
			d.wordsSoFar = d.evtLength
			d.fragLength = 0
			return CODA_OK
		}

		// Second word contains the event type, for CODA events.
		d.evtTag = BankTag(buffer[1])
		localDataType := BankDataType(buffer[1])
		d.idBankNum = BankNum(buffer[1])
		if d.idBankNum == CODA2_EVENT_BANK_ID {
			//  This is a CODA event bank; the event type is equal to
			//  the event tag.
			localEventType := d.evtTag
			d.evtType = localEventType
			d.bankDataType = localDataType

			if localEventType <= 15 {
				//  This is a physics event; record the event number, event
				//  classification, and status summary.
				if d.evtLength < 7 || len(buffer) < 7 {
					logger.Errorf("Physics event with length %d; at least 7 words needed",
						d.evtLength)
					d.physicsEventFlag = false
					d.evtNumber = 0
					d.evtClass = 0
					d.statSum = 0
					d.wordsSoFar = d.evtLength
					d.fragLength = 0
					return CODA_OK
				}
				d.physicsEventFlag = true
				d.evtNumber = buffer[4]
				d.evtClass = buffer[5]
				d.statSum = buffer[6]
				//  Now skip to the first ROC data bank.
				d.wordsSoFar = 7
			} else {
				//  This is not a physics event, but is still in the CODA
				//  event format.  The first two words have been examined.
				d.evtNumber = 0
				d.evtClass = 0
				d.statSum = 0
				d.wordsSoFar = 2
				//  Run this event through the Control event processing.
				//  If it is not a control event, nothing will happen.
				d.controlEventFlag = isControlEventType(d.evtType)
				d.controlEvents.ProcessControlEvent(d.evtType, clampPayload(buffer, d.wordsSoFar, d.evtLength))
			}
		} else {
			//  This is not an event in the CODA event bank format,
			//  but it still follows the CEBAF common event format.
			//  Arbitrarily set the event type to "evtTag".
			//  The first two words have been examined.
			d.evtType = d.evtTag
			d.bankDataType = localDataType
			d.evtNumber = 0
			d.evtClass = 0
			d.statSum = 0
			d.wordsSoFar = 2
		}
	}
	//  Initialize the fragment size to the event size, in case the
	//  event is not subbanked.
	d.fragLength = d.evtLength - d.wordsSoFar
	logger.Debugf("Length: %d; Tag: 0x%x; Bank data type: 0x%x; Bank ID num: 0x%x; Evt type: 0x%x; Evt number %d; Evt Class 0x%.8x; Status Summary: 0x%.8x; Words so far %d",
		d.evtLength, d.evtTag, d.bankDataType, d.idBankNum,
		d.evtType, d.evtNumber, d.evtClass, d.statSum, d.wordsSoFar)

	return CODA_OK
}

// isControlEventType reports whether a CODA 2 event type is one of the
// five run-control types.
func isControlEventType(evtype uint32) bool {
	return evtype >= SYNC_EVENT && evtype <= END_EVENT
}

// clampPayload returns the event payload starting at offset, bounded by
// both the declared event length and the real buffer size.
func clampPayload(buffer []uint32, offset, evtLength uint32) []uint32 {
	end := evtLength
	if end > uint32(len(buffer)) {
		end = uint32(len(buffer))
	}
	if offset >= end {
		return nil
	}
	return buffer[offset:end]
}

// EncodePHYSEventHeader builds a minimal CODA 2 physics event header.
// The ROC list is unused in CODA 2 headers.
func (d *Coda2Decoder) EncodePHYSEventHeader(rocList []uint32) []uint32 {
	d.evtNumber++
	return []uint32{
		(0x0001 << 16) | (0x10 << 8) | 0xCC,
		// event type | event data type | event ID (0xCC for CODA event)
		4, // size of header field
		(0xC000 << 16) | (0x01 << 8) | 0x00,
		// bank type | bank data type (0x01 for uint32) | bank ID (0x00 for header event)
		d.evtNumber, // event number (initialized to 0, so increment before use to agree with CODA number)
		1,           // event class
		0,           // status summary
	}
}

// EncodePrestartEventHeader fills a 5-word prestart header and records
// the prestart in the control event tracker.
func (d *Coda2Decoder) EncodePrestartEventHeader(buffer []uint32, runNumber, runType, localTime uint32) {
	buffer[0] = 4 // Prestart event length
	buffer[1] = (PRESTART_EVENT << 16) | (0x01 << 8) | 0xCC
	buffer[2] = localTime
	buffer[3] = runNumber
	buffer[4] = runType
	d.controlEvents.ProcessPrestart(localTime, runNumber, runType)
}

func (d *Coda2Decoder) EncodeGoEventHeader(buffer []uint32, eventCount, localTime uint32) {
	buffer[0] = 4 // Go event length
	buffer[1] = (GO_EVENT << 16) | (0x01 << 8) | 0xCC
	buffer[2] = localTime
	buffer[3] = 0 // unused
	buffer[4] = eventCount
	d.controlEvents.ProcessGo(localTime, eventCount)
}

func (d *Coda2Decoder) EncodePauseEventHeader(buffer []uint32, eventCount, localTime uint32) {
	buffer[0] = 4 // Pause event length
	buffer[1] = (PAUSE_EVENT << 16) | (0x01 << 8) | 0xCC
	buffer[2] = localTime
	buffer[3] = 0 // unused
	buffer[4] = eventCount
	d.controlEvents.ProcessPause(localTime, eventCount)
}

func (d *Coda2Decoder) EncodeEndEventHeader(buffer []uint32, eventCount, localTime uint32) {
	buffer[0] = 4 // End event length
	buffer[1] = (END_EVENT << 16) | (0x01 << 8) | 0xCC
	buffer[2] = localTime
	buffer[3] = 0 // unused
	buffer[4] = eventCount
	d.controlEvents.ProcessEnd(localTime, eventCount)
}

// GetEvtClass returns the event classification word of the last physics event.
func (d *Coda2Decoder) GetEvtClass() uint32 { return d.evtClass }

// GetStatSum returns the status summary word of the last physics event.
func (d *Coda2Decoder) GetStatSum() uint32 { return d.statSum }

// GetIDBankNum returns the num field of the last event ID bank.
func (d *Coda2Decoder) GetIDBankNum() uint32 { return d.idBankNum }

// PrintDecoderInfo dumps the current decode state for diagnostics.
func (d *Coda2Decoder) PrintDecoderInfo(out io.Writer) {
	fmt.Fprintf(out, "Length: %d; Tag: 0x%x; Bank data type: 0x%x; Bank ID num: 0x%x; Evt type: 0x%x; Evt number %d; Evt Class 0x%.8x\n",
		d.evtLength, d.evtTag, d.bankDataType, d.idBankNum,
		d.evtType, d.evtNumber, d.evtClass)
	d.printDecoderInfo(out)
}

// LocalTime returns the wall-clock time used when encoding mock events.
func LocalTime() uint32 {
	return uint32(time.Now().Unix())
}
