package decoder

// ROCBank is one decoded subbank of a physics event: the readout
// controller it came from, its header fields, and a view of its payload
// words. The payload slice borrows the event buffer and is only valid
// while the caller holds that buffer.
type ROCBank struct {
	ROC      uint32
	Tag      uint32
	DataType uint32
	Num      uint32
	Data     []uint32
}

// EventRecord is the decoded view of one event handed to downstream
// consumers: the classification flags and scalars from the ID bank
// decode plus the subbank walk.
type EventRecord struct {
	EventNumber uint32
	EventType   uint32
	EventTag    uint32
	EventLength uint32
	EventTime   uint64
	TriggerBits uint32
	Physics     bool
	Control     bool
	Banks       []ROCBank
}

// DecodeEvent runs the full decode of one event buffer: the event ID
// bank first, then the subbank walk for physics events. The decoder's
// control event tracker is updated as a side effect of control events.
func DecodeEvent(d VersionedEventDecoder, buffer []uint32) EventRecord {
	d.DecodeEventIDBank(buffer)

	record := EventRecord{
		EventNumber: d.GetEvtNumber(),
		EventType:   d.GetEvtType(),
		EventTag:    d.GetEvtTag(),
		EventLength: d.GetEvtLength(),
		Physics:     d.IsPhysicsEvent(),
		Control:     d.IsControlEvent(),
	}
	if c3, ok := d.(*Coda3Decoder); ok {
		record.EventTime = c3.GetEvTime()
		record.TriggerBits = c3.GetTriggerBits()
	}
	if !record.Physics {
		return record
	}

	// Walk the ROC banks. DecodeSubbankHeader returns false at the end
	// of the event and on corrupt headers; either way the walk stops.
	end := record.EventLength
	if end > uint32(len(buffer)) {
		end = uint32(len(buffer))
	}
	for d.GetWordsSoFar() < end {
		if !d.DecodeSubbankHeader(buffer[d.GetWordsSoFar():end]) {
			break
		}
		start := d.GetWordsSoFar()
		fragEnd := start + d.GetFragLength()
		if fragEnd > end {
			logger.Errorf("Subbank data from word %d to %d overruns the event (%d words)",
				start, fragEnd, end)
			break
		}
		record.Banks = append(record.Banks, ROCBank{
			ROC:      d.GetROC(),
			Tag:      d.GetSubbankTag(),
			DataType: d.GetSubbankType(),
			Num:      d.GetSubbankNum(),
			Data:     buffer[start:fragEnd],
		})
		d.AddWordsSoFarAndFragLength()
	}
	return record
}
