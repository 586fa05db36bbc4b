package decoder

// Every CODA bank, subbank and trigger bank segment shares the same
// two-word header layout:
//
//	word 0: number of 32-bit words following this one
//	word 1: (tag:16)(data type:8)(num:8)
//
// The helpers below are the only place those bit positions are written
// down; every decoder goes through them.

// BankTag extracts the tag from a bank header word (bits 16-31).
func BankTag(word uint32) uint32 {
	return (word & 0xFFFF0000) >> 16
}

// BankDataType extracts the data type from a bank header word (bits 8-15).
func BankDataType(word uint32) uint32 {
	return (word & 0xFF00) >> 8
}

// BankNum extracts the num/id field from a bank header word (bits 0-7).
func BankNum(word uint32) uint32 {
	return word & 0xFF
}

// BankHeader is the decoded view of a two-word bank header.
type BankHeader struct {
	Length   uint32 // words following word 0; total bank words = Length+1
	Tag      uint32
	DataType uint32
	Num      uint32
}

// DecodeBankHeader reads the two-word header starting at offset.
// The header must fit inside the buffer.
func DecodeBankHeader(buffer []uint32, offset uint32) (BankHeader, error) {
	if uint64(offset)+2 > uint64(len(buffer)) {
		return BankHeader{}, formatErrorf("bank header at word %d past end of buffer (%d words)",
			offset, len(buffer))
	}
	return BankHeader{
		Length:   buffer[offset],
		Tag:      BankTag(buffer[offset+1]),
		DataType: BankDataType(buffer[offset+1]),
		Num:      BankNum(buffer[offset+1]),
	}, nil
}

// word64 reads a 64-bit value stored as two consecutive 32-bit words,
// low word first, as produced by the DAQ front-ends.
func word64(buffer []uint32, offset uint32) uint64 {
	return uint64(buffer[offset]) | uint64(buffer[offset+1])<<32
}
