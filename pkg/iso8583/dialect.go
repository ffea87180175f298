package iso8583

// Built-in dialects. Each call returns a fresh Layout; derive variants with
// (*Layout).With.

// PosLayout returns the 64 field dialect spoken by Chinese POS terminals:
// a 2 byte binary envelope, a 5 byte TPDU, a 6 byte application header, a
// packed MTI and a primary bitmap only. Text fields are GBK.
func PosLayout() *Layout {
	sub60 := mustSubLayout(
		FixedField(1, 2, BCD, WithAlign(AlignNone)), // transaction type code
		FixedField(2, 6, BCD, WithAlign(AlignNone)), // batch number
		FixedField(3, 3, BCD, WithAlign(AlignNone)), // network management code
		FixedField(4, 1, BCD, WithAlign(AlignNone)), // terminal read capability
		FixedField(5, 1, BCD, WithAlign(AlignNone)), // IC card condition code
		FixedField(6, 1, BCD, WithAlign(AlignNone)), // partial approval flag
		FixedField(7, 3, BCD, WithAlign(AlignNone)), // account type
	)

	return MustNewLayout(64, []FieldType{
		FixedField(IndexLength, 2, HEX, WithAlign(AlignRight)),
		FixedField(IndexTPDU, 10, BCD),
		FixedField(IndexHeader, 12, BCD),
		FixedField(IndexMTI, 4, BCD),

		VariableField(2, LengthLLVAR, BCD),
		FixedField(3, 6, BCD),
		FixedField(4, 12, BCD, WithAlign(AlignRight)),
		FixedField(11, 6, BCD),
		FixedField(12, 6, BCD),
		FixedField(13, 4, BCD),
		FixedField(14, 4, BCD),
		FixedField(15, 4, BCD),
		FixedField(22, 3, BCD),
		FixedField(23, 3, BCD, WithAlign(AlignRight)),
		FixedField(25, 2, BCD),
		FixedField(26, 2, BCD),
		VariableField(32, LengthLLVAR, BCD),
		VariableField(34, LengthLLLVAR, HEX),
		VariableField(35, LengthLLLVAR, HEX),
		VariableField(36, LengthLLLVAR, HEX),
		FixedField(37, 12, ASCII),
		FixedField(38, 6, ASCII),
		FixedField(39, 2, ASCII),
		FixedField(41, 8, ASCII),
		FixedField(42, 15, ASCII),
		FixedField(43, 40, ASCII, WithPad(' ')),
		VariableField(44, LengthLLVAR, ASCII),
		VariableField(46, LengthLLLVAR, ASCII),
		VariableField(47, LengthLLLVAR, HEX),
		VariableField(48, LengthLLLVAR, HEX),
		FixedField(49, 3, ASCII),
		FixedField(52, 8, HEX),
		FixedField(53, 16, BCD),
		VariableField(54, LengthLLLVAR, ASCII),
		VariableField(55, LengthLLLVAR, HEX, WithTLV()),
		VariableField(56, LengthLLLVAR, ASCII),
		VariableField(58, LengthLLLVAR, ASCII),
		VariableField(59, LengthLLLVAR, HEX),
		VariableField(60, LengthLLLVAR, BCD, WithSubLayout(sub60)),
		VariableField(61, LengthLLLVAR, BCD),
		VariableField(62, LengthLLLVAR, HEX),
		VariableField(63, LengthLLLVAR, HEX),
		FixedField(64, 8, HEX),
	}, WithName("pos"))
}

// UnionLayout returns the 128 field switch dialect: the 46 byte UnionPay
// header with an inline decimal total length, a text MTI, and a secondary
// bitmap announced by bit 1.
func UnionLayout() *Layout {
	return MustNewLayout(128, []FieldType{
		FixedField(IndexHeaderLength, 1, HEX),
		FixedField(IndexHeaderFlag, 1, HEX),
		FixedField(IndexLength, 4, ASCII, WithAlign(AlignRight)),
		FixedField(IndexDestinationID, 11, ASCII, WithPad(' ')),
		FixedField(IndexSourceID, 11, ASCII, WithPad(' ')),
		FixedField(IndexReserved, 3, HEX),
		FixedField(IndexBatchNumber, 1, HEX),
		FixedField(IndexTransactionInfo, 8, ASCII, WithPad(' ')),
		FixedField(IndexUserInfo, 1, HEX),
		FixedField(IndexRejectCode, 5, ASCII),
		FixedField(IndexMTI, 4, ASCII),

		VariableField(2, LengthLLVARASCII, ASCII),
		FixedField(3, 6, ASCII),
		FixedField(4, 12, ASCII, WithAlign(AlignRight)),
		FixedField(7, 10, ASCII),
		FixedField(11, 6, ASCII),
		FixedField(12, 6, ASCII),
		FixedField(13, 4, ASCII),
		FixedField(14, 4, ASCII),
		FixedField(15, 4, ASCII),
		FixedField(18, 4, ASCII),
		FixedField(22, 3, ASCII),
		FixedField(23, 3, ASCII, WithAlign(AlignRight)),
		FixedField(25, 2, ASCII),
		FixedField(26, 2, ASCII),
		VariableField(32, LengthLLVARASCII, ASCII),
		VariableField(33, LengthLLVARASCII, ASCII),
		VariableField(35, LengthLLVARASCII, ASCII),
		VariableField(36, LengthLLLVARASCII, ASCII),
		FixedField(37, 12, ASCII),
		FixedField(38, 6, ASCII),
		FixedField(39, 2, ASCII),
		FixedField(41, 8, ASCII, WithPad(' ')),
		FixedField(42, 15, ASCII, WithPad(' ')),
		FixedField(43, 40, ASCII, WithPad(' ')),
		VariableField(44, LengthLLVARASCII, ASCII),
		VariableField(45, LengthLLVARASCII, ASCII),
		VariableField(48, LengthLLLVARASCII, ASCII),
		FixedField(49, 3, ASCII),
		FixedField(50, 3, ASCII),
		FixedField(51, 3, ASCII),
		FixedField(52, 8, HEX),
		FixedField(53, 16, ASCII),
		VariableField(54, LengthLLLVARASCII, ASCII),
		VariableField(55, LengthLLLVARASCII, HEX, WithTLV()),
		VariableField(57, LengthLLLVARASCII, ASCII),
		VariableField(59, LengthLLLVARASCII, ASCII),
		VariableField(60, LengthLLLVARASCII, ASCII),
		VariableField(61, LengthLLLVARASCII, ASCII),
		VariableField(62, LengthLLLVARASCII, ASCII),
		VariableField(63, LengthLLLVARASCII, ASCII),
		FixedField(70, 3, ASCII),
		FixedField(90, 42, ASCII),
		FixedField(96, 8, HEX),
		VariableField(100, LengthLLVARASCII, ASCII),
		VariableField(102, LengthLLVARASCII, ASCII),
		VariableField(103, LengthLLVARASCII, ASCII),
		VariableField(104, LengthLLLVARASCII, ASCII),
		VariableField(121, LengthLLLVARASCII, ASCII),
		VariableField(122, LengthLLLVARASCII, ASCII),
		VariableField(123, LengthLLLVARASCII, ASCII),
		FixedField(128, 8, HEX),
	}, WithName("union"), WithInlineLength(), WithSecondaryBitmap())
}

func mustSubLayout(types ...FieldType) *Layout {
	l, err := NewSubLayout(types...)
	if err != nil {
		panic(err)
	}
	return l
}
