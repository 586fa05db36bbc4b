package decoder

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// subbankedEvent builds a CODA 2 physics event whose ID bank declares
// subbank contents (data type 0x10), followed by the given banks.
func subbankedEvent(banks ...[]uint32) []uint32 {
	buffer := []uint32{0, 3<<16 | 0x10<<8 | 0xCC, 0, 0, 1001, 7, 0}
	for _, bank := range banks {
		buffer = append(buffer, bank...)
	}
	buffer[0] = uint32(len(buffer)) - 1
	return buffer
}

func TestDecodeSubbankHeaderWalk(t *testing.T) {
	d := NewCoda2Decoder()
	buffer := subbankedEvent(
		[]uint32{4, 33<<16 | 0x01<<8 | 0x05, 10, 11, 12},
		[]uint32{3, 5<<16 | 0x10<<8 | 0x00, 20, 21},
	)
	require.Equal(t, CODA_OK, d.DecodeEventIDBank(buffer))
	require.True(t, d.IsPhysicsEvent())
	require.Equal(t, uint32(7), d.GetWordsSoFar())

	// First subbank: a regular tagged bank.
	require.True(t, d.DecodeSubbankHeader(buffer[d.GetWordsSoFar():]))
	assert.Equal(t, uint32(33), d.GetSubbankTag())
	assert.Equal(t, uint32(0x01), d.GetSubbankType())
	assert.Equal(t, uint32(0x05), d.GetSubbankNum())
	assert.Equal(t, uint32(3), d.GetFragLength())
	assert.Equal(t, uint32(9), d.GetWordsSoFar())
	d.AddWordsSoFarAndFragLength()

	// Second subbank: tag 5 is reinterpreted as a ROC id.
	require.True(t, d.DecodeSubbankHeader(buffer[d.GetWordsSoFar():]))
	assert.Equal(t, uint32(5), d.GetROC())
	assert.Equal(t, uint32(0), d.GetSubbankTag())
	d.AddWordsSoFarAndFragLength()

	// End of event: false, not an error.
	assert.Equal(t, d.GetEvtLength(), d.GetWordsSoFar())
	assert.False(t, d.DecodeSubbankHeader(buffer[len(buffer):]))
}

func TestDecodeSubbankHeaderLowTagPolicy(t *testing.T) {
	tests := []struct {
		name        string
		allowLowIDs bool
		subbankType uint32
		wantROC     uint32
		wantTag     uint32
	}{
		{name: "low tag is a ROC id by default", allowLowIDs: false, subbankType: 0x01, wantROC: 9, wantTag: 0},
		{name: "allowed low tag with plain type stays a tag", allowLowIDs: true, subbankType: 0x01, wantROC: 0, wantTag: 9},
		{name: "allowed low tag with subbank type is a ROC id", allowLowIDs: true, subbankType: 0x10, wantROC: 9, wantTag: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewCoda2Decoder()
			d.SetAllowLowSubbankIDs(tc.allowLowIDs)
			buffer := subbankedEvent(
				[]uint32{3, 9<<16 | tc.subbankType<<8 | 0x00, 1, 2},
			)
			require.Equal(t, CODA_OK, d.DecodeEventIDBank(buffer))
			require.True(t, d.DecodeSubbankHeader(buffer[d.GetWordsSoFar():]))
			assert.Equal(t, tc.wantROC, d.GetROC())
			assert.Equal(t, tc.wantTag, d.GetSubbankTag())
		})
	}
}

func TestDecodeSubbankHeaderOverflow(t *testing.T) {
	d := NewCoda2Decoder()
	buffer := subbankedEvent(
		[]uint32{3, 33<<16 | 0x01<<8, 1, 2},
	)
	// Inflate the subbank's declared length past the event end.
	buffer[7] = 100
	require.Equal(t, CODA_OK, d.DecodeEventIDBank(buffer))
	assert.False(t, d.DecodeSubbankHeader(buffer[d.GetWordsSoFar():]),
		"a subbank overrunning its event is a corrupt-event condition")
}

func TestDecodeSubbankHeaderZeroLengthWord(t *testing.T) {
	d := NewCoda2Decoder()
	// A zero length word would make the fragment size underflow.
	buffer := subbankedEvent(
		[]uint32{0, 33 << 16},
	)
	require.Equal(t, CODA_OK, d.DecodeEventIDBank(buffer))
	assert.False(t, d.DecodeSubbankHeader(buffer[d.GetWordsSoFar():]))
}

func TestDecodeSubbankHeaderHugeLengthWord(t *testing.T) {
	d := NewCoda2Decoder()
	// A length word near the uint32 maximum must not wrap the overflow
	// check back into range.
	buffer := subbankedEvent(
		[]uint32{0xFFFFFFF0, 33 << 16},
	)
	require.Equal(t, CODA_OK, d.DecodeEventIDBank(buffer))
	assert.False(t, d.DecodeSubbankHeader(buffer[d.GetWordsSoFar():]))
}

func TestDecodeSubbankHeaderNonSubbanked(t *testing.T) {
	d := NewCoda2Decoder()
	// Data type 0x01: the bank has no subbanks, the call succeeds
	// without decoding a header or moving the cursor.
	buffer := []uint32{8, 3<<16 | 0x01<<8 | 0xCC, 0, 0, 1001, 7, 0, 10, 11}
	require.Equal(t, CODA_OK, d.DecodeEventIDBank(buffer))
	wordsBefore := d.GetWordsSoFar()
	assert.True(t, d.DecodeSubbankHeader(buffer[wordsBefore:]))
	assert.Equal(t, wordsBefore, d.GetWordsSoFar())
	assert.Equal(t, uint32(2), d.GetFragLength(), "the fragment is the whole payload")
}

func TestNewDecoder(t *testing.T) {
	d2, err := NewDecoder(2)
	require.NoError(t, err)
	assert.IsType(t, &Coda2Decoder{}, d2)

	d3, err := NewDecoder(3)
	require.NoError(t, err)
	assert.IsType(t, &Coda3Decoder{}, d3)

	_, err = NewDecoder(4)
	assert.Error(t, err)
}

func TestPrintDecoderInfo(t *testing.T) {
	d := NewCoda2Decoder()
	require.Equal(t, CODA_OK, d.DecodeEventIDBank([]uint32{6, 3<<16 | 1<<8 | 0xCC, 0, 0, 1001, 7, 0}))

	var out bytes.Buffer
	d.PrintDecoderInfo(&out)
	assert.Contains(t, out.String(), "Evt number 1001")

	// Diagnostics must not disturb the decode state.
	assert.Equal(t, uint32(7), d.GetWordsSoFar())
	assert.True(t, d.IsPhysicsEvent())
}
