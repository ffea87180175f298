// Package iso8583 encodes and decodes ISO 8583 financial messages.
//
// A dialect is described once as a Layout: which data element uses which
// length prefix (FIXED, LLVAR, LLLVAR, LLLLVAR, LLVAR_ASCII, LLLVAR_ASCII),
// which value encoding (BCD, HEX, ASCII) and which alignment and padding
// rules. A Decoder turns wire bytes into a Message, an Encoder builds a
// Message from logical values, and Message.Bytes renders it back.
//
// MESSAGE STRUCTURE:
//
//  1. Envelope (optional): total length of what follows, big endian.
//  2. Header elements: fixed width, always present (TPDU, header, MTI, or the
//     UnionPay header catalogue).
//  3. Bitmap: one bit per data element, left to right from element 1.
//  4. Data elements in ascending order: length prefix then value.
//
// Decoding works over the upper case hex text of the message, one hex digit
// per nibble, so BCD sub-elements can start on half bytes.
//
// Layouts and FieldTypes are immutable once built and can be shared between
// goroutines. Messages and Fields belong to the caller that produced them.
package iso8583
