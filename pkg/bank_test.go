package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankHeaderBitExtraction(t *testing.T) {
	tests := []struct {
		name     string
		tag      uint32
		dataType uint32
		num      uint32
	}{
		{name: "all zero", tag: 0x0000, dataType: 0x00, num: 0x00},
		{name: "all max", tag: 0xFFFF, dataType: 0xFF, num: 0xFF},
		{name: "tag max only", tag: 0xFFFF, dataType: 0x00, num: 0x00},
		{name: "num max only", tag: 0x0000, dataType: 0x00, num: 0xFF},
		{name: "coda2 event bank", tag: 0x0003, dataType: 0x01, num: 0xCC},
		{name: "coda3 trigger bank", tag: 0xFF21, dataType: 0x20, num: 0x02},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			word := tc.tag<<16 | tc.dataType<<8 | tc.num
			assert.Equal(t, tc.tag, BankTag(word))
			assert.Equal(t, tc.dataType, BankDataType(word))
			assert.Equal(t, tc.num, BankNum(word))
		})
	}
}

func TestDecodeBankHeader(t *testing.T) {
	buffer := []uint32{5, 0x00211001, 0, 0, 0, 0}

	header, err := DecodeBankHeader(buffer, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), header.Length)
	assert.Equal(t, uint32(0x21), header.Tag)
	assert.Equal(t, uint32(0x10), header.DataType)
	assert.Equal(t, uint32(0x01), header.Num)

	_, err = DecodeBankHeader(buffer, 5)
	require.Error(t, err)
	assert.True(t, IsFormatError(err))
}

func TestWord64(t *testing.T) {
	buffer := []uint32{0x56789ABC, 0x00001234}
	assert.Equal(t, uint64(0x123456789ABC), word64(buffer, 0))
}
