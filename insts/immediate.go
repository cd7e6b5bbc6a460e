package insts

// Immediates holds the five immediate encodings of an instruction word,
// each sign-extended to the architectural width.
type Immediates struct {
	I Word
	S Word
	B Word
	J Word
	U Word
}

// SignExtend replicates bit (bits-1) of value into all higher bits of a Word.
// Bits of value above the sign bit are discarded.
func SignExtend(value uint32, bits uint) Word {
	shift := XLEN - bits
	return Word(UWord(value)<<shift) >> shift
}

// ImmI returns the I-type immediate: bits [31:20], sign bit 11.
func ImmI(word uint32) Word {
	return SignExtend(word>>20, 12)
}

// ImmS returns the S-type immediate: {bits [31:25], bits [11:7]}, sign bit 11.
func ImmS(word uint32) Word {
	v := (word>>25)&0x7F<<5 | (word>>7)&0x1F
	return SignExtend(v, 12)
}

// ImmB returns the B-type immediate:
// {bit 31, bit 7, bits [30:25], bits [11:8], 0}, sign bit 12.
func ImmB(word uint32) Word {
	v := (word>>31)&0x1<<12 |
		(word>>7)&0x1<<11 |
		(word>>25)&0x3F<<5 |
		(word>>8)&0xF<<1
	return SignExtend(v, 13)
}

// ImmJ returns the J-type immediate:
// {bit 31, bits [19:12], bit 20, bits [30:21], 0}, sign bit 20.
func ImmJ(word uint32) Word {
	v := (word>>31)&0x1<<20 |
		(word>>12)&0xFF<<12 |
		(word>>20)&0x1<<11 |
		(word>>21)&0x3FF<<1
	return SignExtend(v, 21)
}

// ImmU returns the U-type immediate: bits [31:12] in place, low 12 bits zero.
// With a 64-bit Word the 32-bit result is sign-extended, matching RV64 LUI.
func ImmU(word uint32) Word {
	return SignExtend(word&0xFFFFF000, 32)
}

// GenerateImmediates computes all five immediates of an instruction word.
func GenerateImmediates(word uint32) Immediates {
	return Immediates{
		I: ImmI(word),
		S: ImmS(word),
		B: ImmB(word),
		J: ImmJ(word),
		U: ImmU(word),
	}
}
