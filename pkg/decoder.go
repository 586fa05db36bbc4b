package decoder

import (
	"fmt"
	"io"
)

// VersionedEventDecoder is the contract shared by the CODA 2 and CODA 3
// decoders. A decoder instance owns its mutable decode state and its
// control event tracker; it must not be shared between concurrent
// callers. The input buffer is only borrowed for the duration of a call.
type VersionedEventDecoder interface {
	// Encoding functions, used for mock data generation. Encoding a
	// control event header also feeds the control event tracker, so an
	// encode-then-decode round trip is observable in the run summary.
	EncodePHYSEventHeader(rocList []uint32) []uint32
	EncodePrestartEventHeader(buffer []uint32, runNumber, runType, localTime uint32)
	EncodeGoEventHeader(buffer []uint32, eventCount, localTime uint32)
	EncodePauseEventHeader(buffer []uint32, eventCount, localTime uint32)
	EncodeEndEventHeader(buffer []uint32, eventCount, localTime uint32)

	// Decoding functions.
	DecodeEventIDBank(buffer []uint32) int
	DecodeSubbankHeader(buffer []uint32) bool
	PrintDecoderInfo(out io.Writer)

	IsPhysicsEvent() bool
	IsControlEvent() bool
	IsROCConfigurationEvent() bool
	IsEPICSEvent() bool

	GetWordsSoFar() uint32
	GetEvtNumber() uint32
	GetEvtLength() uint32
	GetFragLength() uint32
	GetEvtType() uint32
	GetEvtTag() uint32
	GetBankDataType() uint32
	GetSubbankTag() uint32
	GetSubbankType() uint32
	GetSubbankNum() uint32
	GetROC() uint32

	SetWordsSoFar(val uint32)
	AddWordsSoFarAndFragLength()
	SetFragLength(val uint32)
	SetAllowLowSubbankIDs(val bool)

	ControlEvents() *ControlEventTracker
}

// NewDecoder returns the decoder for the given CODA major version.
// Versions 2 and 3 are the only supported protocols.
func NewDecoder(codaVersion int) (VersionedEventDecoder, error) {
	switch codaVersion {
	case 2:
		return NewCoda2Decoder(), nil
	case 3:
		return NewCoda3Decoder(), nil
	default:
		return nil, fmt.Errorf("unsupported CODA version %d", codaVersion)
	}
}

// eventDecoder holds the per-event decode state common to both protocol
// versions. Every field is overwritten on each DecodeEventIDBank call;
// only the control event tracker accumulates across events.
type eventDecoder struct {
	controlEvents ControlEventTracker

	// Generic information
	wordsSoFar uint32
	evtLength  uint32
	evtNumber  uint32 // CODA event number; only defined for physics events
	fragLength uint32

	// Event information
	evtType      uint32
	evtTag       uint32
	bankDataType uint32
	subbankTag   uint32
	subbankType  uint32
	subbankNum   uint32
	roc          uint32

	physicsEventFlag   bool
	controlEventFlag   bool
	allowLowSubbankIDs bool
}

// DecodeSubbankHeader decodes the header information from either a ROC
// bank or a subbank and bumps wordsSoFar to the first word of the
// subbank's data. The buffer starts at the current decode position.
//
//	NOTE TO DAQ PROGRAMMERS:
//	    All internal subbank tags MUST be defined to
//	    be greater than 31.
func (d *eventDecoder) DecodeSubbankHeader(buffer []uint32) bool {
	okay := true
	if d.wordsSoFar >= d.evtLength {
		//  We have reached the end of this event.
		okay = false
	} else if d.bankDataType == SUBBANK_DATA_TYPE {
		//  This bank has subbanks, so decode the subbank header.
		if len(buffer) < 2 {
			logger.Errorf("Subbank header at word %d is cut off; %d words left",
				d.wordsSoFar, len(buffer))
			return false
		}
		if buffer[0] == 0 {
			//  A zero length word would underflow the fragment size.
			logger.Errorf("Subbank at word %d with a zero length word", d.wordsSoFar)
			return false
		}
		d.fragLength = buffer[0] - 1 // This is the number of words in the data block
		d.subbankTag = BankTag(buffer[1])
		d.subbankType = BankDataType(buffer[1])
		d.subbankNum = BankNum(buffer[1])

		logger.Debugf("DecodeSubbankHeader: roc==%d, subbankTag==%d, subbankType==%d, subbankNum==%d, allowLowSubbankIDs==%v",
			d.roc, d.subbankTag, d.subbankType, d.subbankNum, d.allowLowSubbankIDs)

		if d.subbankTag <= 31 &&
			(!d.allowLowSubbankIDs ||
				(d.allowLowSubbankIDs && d.subbankType == SUBBANK_DATA_TYPE)) {
			//  Subbank tags between 0 and 31 indicate this is a ROC bank.
			d.roc = d.subbankTag
			d.subbankTag = 0
		}
		//  Widened so a huge fragment length cannot wrap past the check.
		if uint64(d.wordsSoFar)+2+uint64(d.fragLength) > uint64(d.evtLength) {
			//  Trouble, because we'll have too many words!
			logger.Errorf("wordsSoFar+2+fragLength==%d and evtLength==%d",
				uint64(d.wordsSoFar)+2+uint64(d.fragLength), d.evtLength)
			okay = false
		}
		d.wordsSoFar += 2
	}
	//  There is no final else, because any bank type other than
	//  0x10 should just return okay.
	return okay
}

func (d *eventDecoder) printDecoderInfo(out io.Writer) {
	fmt.Fprintf(out, "\n-------\n"+
		"wordsSoFar 0x%x\n evtLength 0x%x\n evtType 0x%x\n evtTag 0x%x\n"+
		" bankDataType 0x%x\n physicsEventFlag %v\n evtNumber 0x%x\n"+
		" fragLength 0x%x\n subbankTag 0x%x\n subbankType 0x%x\n"+
		" subbankNum 0x%x\n roc 0x%x\n allowLowSubbankIDs %v\n-------\n",
		d.wordsSoFar, d.evtLength, d.evtType, d.evtTag,
		d.bankDataType, d.physicsEventFlag, d.evtNumber,
		d.fragLength, d.subbankTag, d.subbankType,
		d.subbankNum, d.roc, d.allowLowSubbankIDs)
}

func (d *eventDecoder) IsPhysicsEvent() bool { return d.physicsEventFlag }
func (d *eventDecoder) IsControlEvent() bool { return d.controlEventFlag }

func (d *eventDecoder) IsROCConfigurationEvent() bool {
	return d.evtType >= 0x90 && d.evtType <= 0x18f
}

func (d *eventDecoder) IsEPICSEvent() bool {
	return d.evtType == EPICS_EVTYPE
}

func (d *eventDecoder) GetWordsSoFar() uint32   { return d.wordsSoFar }
func (d *eventDecoder) GetEvtNumber() uint32    { return d.evtNumber }
func (d *eventDecoder) GetEvtLength() uint32    { return d.evtLength }
func (d *eventDecoder) GetFragLength() uint32   { return d.fragLength }
func (d *eventDecoder) GetEvtType() uint32      { return d.evtType }
func (d *eventDecoder) GetEvtTag() uint32       { return d.evtTag }
func (d *eventDecoder) GetBankDataType() uint32 { return d.bankDataType }
func (d *eventDecoder) GetSubbankTag() uint32   { return d.subbankTag }
func (d *eventDecoder) GetSubbankType() uint32  { return d.subbankType }
func (d *eventDecoder) GetSubbankNum() uint32   { return d.subbankNum }
func (d *eventDecoder) GetROC() uint32          { return d.roc }

func (d *eventDecoder) SetWordsSoFar(val uint32)       { d.wordsSoFar = val }
func (d *eventDecoder) AddWordsSoFarAndFragLength()    { d.wordsSoFar += d.fragLength }
func (d *eventDecoder) SetFragLength(val uint32)       { d.fragLength = val }
func (d *eventDecoder) SetAllowLowSubbankIDs(val bool) { d.allowLowSubbankIDs = val }

func (d *eventDecoder) ControlEvents() *ControlEventTracker { return &d.controlEvents }
