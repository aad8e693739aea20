// Package protocol implements the binary wire format used to stream host
// mutations to observers.
//
// Every message is a Frame: a 4-byte header (type, flags, big-endian payload
// length) followed by the payload. Payloads larger than MaxPayloadSize are
// split across frames with FlagContinued; Join reassembles them.
//
// A FrameMutations payload carries the mutations of one commit:
//
//	seq      varint
//	count    varint
//	mutation op(1) id(varint) operands...
//
// Strings are varint length-prefixed UTF-8. Decoders bound every length and
// count before allocating.
package protocol
