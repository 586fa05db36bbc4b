package decoder

// Decode status returned by DecodeEventIDBank.
const CODA_OK = 0

// Trigger bank decode status codes (Hall A analyzer keywords).
const (
	HED_OK    = 0
	HED_WARN  = -63
	HED_ERR   = -127
	HED_FATAL = -255
)

// Control event types. Symbolic values shared between CODA 2 and CODA 3;
// for CODA 2 they are also the wire tag values.
const (
	SYNC_EVENT     = 16
	PRESTART_EVENT = 17
	GO_EVENT       = 18
	PAUSE_EVENT    = 19
	END_EVENT      = 20
)

// CODA 3 reserved bank tags (tags >= 0xff00 are reserved).
const (
	CODA3_RESERVED_TAG = 0xff00
	CODA3_PRESTART_TAG = 0xffd1
	CODA3_GO_TAG       = 0xffd2
	CODA3_PAUSE_TAG    = 0xffd3
	CODA3_END_TAG      = 0xffd4
)

// CODA 3 physics event tags. 0xff58 carries the sync bit.
const (
	CODA3_PHYS_TAG1 = 0xff50
	CODA3_PHYS_TAG2 = 0xff58
	CODA3_PHYS_TAG3 = 0xff70
	CODA3_PHYS_TAG4 = 0xff78
)

// User (non-reserved) event types inserted in the data stream by the DAQ.
const (
	EPICS_EVTYPE       = 131
	TS_PRESCALE_EVTYPE = 120
	PRESCALE_EVTYPE    = 133
	DETMAP_FILE        = 135
	TRIGGER_FILE       = 136
	DAQCONFIG_FILE1    = 137
	DAQCONFIG_FILE2    = 138
	SCALER_EVTYPE      = 140
	SBSSCALER_EVTYPE   = 141
	HV_DATA_EVTYPE     = 150
)

// CODA 2 physics event types run from 0 to MAX_PHYS_EVTYPE inclusive;
// CODA 3 physics events are always type 1.
const MAX_PHYS_EVTYPE = 14

// Bank data type marking a bank that contains subbanks.
const SUBBANK_DATA_TYPE = 0x10

// CODA 2 event banks carry this marker in the low byte of the header word.
const CODA2_EVENT_BANK_ID = 0xCC
