package decoder

// TriggerBank is the decoded view of a CODA 3 trigger bank for one event
// block. Fill borrows the caller's buffer; the stored slice and offsets
// are only valid until the next Fill or Clear. Where the original DAQ
// libraries keep raw pointers into the event buffer, this keeps word
// offsets and checks every segment boundary, so a corrupt bank surfaces
// as a FormatError instead of an out-of-range read.
type TriggerBank struct {
	blockSize uint32 // total number of triggers in the bank
	tag       uint16 // trigger bank tag, 0xff2x
	numROCs   uint16 // number of ROC banks in the event block (1-256)
	length    uint32 // total length of the trigger bank, including bank header
	tsrocLen  uint32 // number of words in the TSROC segment
	evtNum    uint64 // starting event number of the block
	runInfo   uint64 // run info data (optional)

	bank []uint32 // borrowed trigger bank words
	// Word offsets into bank; -1 while the segment is absent.
	evTS   int // per-event 64-bit timestamps (optional)
	evType int // packed 16-bit event types
	tsROC  int // trigger supervisor ROC segment
}

// Clear zeroes the trigger bank, dropping any partial state left behind
// by a failed Fill.
func (t *TriggerBank) Clear() {
	*t = TriggerBank{evTS: -1, evType: -1, tsROC: -1}
}

// WithTimeStamp reports whether the bank carries a per-event timestamp
// array (tag bit 0).
func (t *TriggerBank) WithTimeStamp() bool { return t.tag&1 != 0 }

// WithRunInfo reports whether the bank carries a run info word (tag bit 1).
func (t *TriggerBank) WithRunInfo() bool { return t.tag&2 != 0 }

// WithTriggerBits reports whether the TSROC segment is wide enough to
// carry a third word per event with the trigger latch bits.
func (t *TriggerBank) WithTriggerBits() bool { return t.tsrocLen > 2*t.blockSize }

func (t *TriggerBank) BlockSize() uint32 { return t.blockSize }
func (t *TriggerBank) Tag() uint16       { return t.tag }
func (t *TriggerBank) NumROCs() uint16   { return t.numROCs }
func (t *TriggerBank) Len() uint32       { return t.length }
func (t *TriggerBank) TSROCLen() uint32  { return t.tsrocLen }
func (t *TriggerBank) EvtNum() uint64    { return t.evtNum }
func (t *TriggerBank) RunInfo() uint64   { return t.runInfo }

// Fill unpacks a trigger bank. evbuffer starts at the trigger bank's
// length word, blkSize is the configured events-per-block count and
// tsroc the ROC number of the trigger supervisor. On failure, state
// from segments parsed before the error may remain set; the caller must
// discard it with Clear. Returns the total bank length in words.
//
// Layout, strictly sequential:
//
//	header word pair: length, tag, nrocs
//	segment 1: uint64 event_number
//	           uint64 run_info              if WithRunInfo
//	           uint64 time_stamp[blkSize]   if WithTimeStamp
//	segment 2: uint16 event_type[blkSize], padded to a 32-bit boundary
//	nrocs further segments, tagged by ROC number in the top byte; the
//	scan stops at the segment matching tsroc.
func (t *TriggerBank) Fill(evbuffer []uint32, blkSize uint32, tsroc uint32) (uint32, error) {
	if blkSize == 0 {
		return 0, ErrInvalidBlockSize
	}
	if len(evbuffer) < 2 {
		return 0, formatErrorf("trigger bank shorter than its header (%d words)", len(evbuffer))
	}
	t.bank = evbuffer
	t.blockSize = blkSize
	t.length = evbuffer[0] + 1
	t.tag = uint16(BankTag(evbuffer[1]))
	t.numROCs = uint16(evbuffer[1] & 0xff)
	t.evTS, t.evType, t.tsROC = -1, -1, -1
	if uint64(t.length) > uint64(len(evbuffer)) {
		return 0, formatErrorf("trigger bank length %d exceeds the %d words available",
			t.length, len(evbuffer))
	}
	if t.length < 3 {
		return 0, formatErrorf("trigger bank length %d has no room for segment 1", t.length)
	}

	p := uint32(2)

	// Segment 1: block metadata.
	slen := evbuffer[p] & 0xffff
	want := uint32(2)
	if t.WithRunInfo() {
		want += 2
	}
	if t.WithTimeStamp() {
		want += 2 * blkSize
	}
	if slen != want {
		return 0, formatErrorf("invalid length for trigger bank seg 1: %d words, expected %d",
			slen, want)
	}
	if p+1+slen > t.length {
		return 0, formatErrorf("trigger bank seg 1 (%d words) overruns bank length %d",
			slen, t.length)
	}
	q := p + 1
	t.evtNum = word64(evbuffer, q)
	q += 2
	if t.WithRunInfo() {
		t.runInfo = word64(evbuffer, q)
		q += 2
	} else {
		t.runInfo = 0
	}
	if t.WithTimeStamp() {
		t.evTS = int(q)
	}
	p += slen + 1
	if p >= t.length {
		return 0, formatErrorf("past end of bank after trigger bank seg 1")
	}

	// Segment 2: packed 16-bit event types.
	slen = evbuffer[p] & 0xffff
	if slen != (blkSize-1)/2+1 {
		return 0, formatErrorf("invalid length for trigger bank seg 2: %d words for block size %d",
			slen, blkSize)
	}
	if p+1+slen > t.length {
		return 0, formatErrorf("trigger bank seg 2 (%d words) overruns bank length %d",
			slen, t.length)
	}
	t.evType = int(p + 1)
	p += slen + 1

	// ROC segments holding timestamps and optional data like trigger
	// latch bits:
	//
	//	struct {
	//	  uint64 roc_time_stamp;    // lower 48 bits only seem to be the time
	//	  uint32 roc_trigger_bits;  // optional, typically only in the TSROC
	//	} roc_segment[blkSize];
	t.tsrocLen = 0
	for i := uint32(0); i < uint32(t.numROCs); i++ {
		if p >= t.length {
			return 0, formatErrorf("past end of bank while scanning trigger bank segments")
		}
		slen = evbuffer[p] & 0xffff
		rocnum := (evbuffer[p] & 0xff000000) >> 24
		if rocnum == tsroc {
			if p+1+slen > t.length {
				return 0, formatErrorf("TSROC segment (%d words) overruns bank length %d",
					slen, t.length)
			}
			t.tsROC = int(p + 1)
			t.tsrocLen = slen
			break
		}
		p += slen + 1
	}

	return t.length, nil
}

// eventType returns the 16-bit event type for the i-th event in the block.
func (t *TriggerBank) eventType(i uint32) (uint16, bool) {
	if t.evType < 0 || i >= t.blockSize {
		return 0, false
	}
	word := t.bank[t.evType+int(i/2)]
	if i%2 == 0 {
		return uint16(word & 0xffff), true
	}
	return uint16(word >> 16), true
}

// timeStamp returns the 64-bit timestamp for the i-th event in the
// block, from the dedicated timestamp array.
func (t *TriggerBank) timeStamp(i uint32) (uint64, bool) {
	if t.evTS < 0 || i >= t.blockSize {
		return 0, false
	}
	return word64(t.bank, uint32(t.evTS)+2*i), true
}

// tsrocTime returns the TSROC time for the i-th event, masked to the
// meaningful lower 48 bits. The upper bits are not guaranteed zero.
func (t *TriggerBank) tsrocTime(i uint32) (uint64, bool) {
	if t.tsROC < 0 || i >= t.blockSize {
		return 0, false
	}
	structSize := uint32(2)
	if t.WithTriggerBits() {
		structSize = 3
	}
	off := uint32(t.tsROC) + structSize*i
	if off+2 > uint32(t.tsROC)+t.tsrocLen {
		return 0, false
	}
	return word64(t.bank, off) & 0x0000FFFFFFFFFFFF, true
}

// triggerBits returns the 6-bit trigger latch bits for the i-th event.
// Only available when the TSROC segment is wide.
func (t *TriggerBank) triggerBits(i uint32) (uint32, bool) {
	if t.tsROC < 0 || !t.WithTriggerBits() || i >= t.blockSize {
		return 0, false
	}
	off := uint32(t.tsROC) + 2 + 3*i
	if off >= uint32(t.tsROC)+t.tsrocLen {
		return 0, false
	}
	return t.bank[off] & 0x3F, true
}
