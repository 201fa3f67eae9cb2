// Package record records and replays the output of the translated program.
//
// A recording is a zstd compressed stream:
//
//	header:
//	u8[4]: RWOQ
//	u8: recording version
//
//	records, until the end of the stream:
//	u8: kind (0 = frame, 1 = delay, 2 = speaker timestamp)
//	frame: u8[16384] CGA framebuffer
//	delay: u32 milliseconds
//	speaker timestamp: u32 timestamp
//
// All integers are little-endian.
package record

const (
	header  = "RWOQ"
	version = 0x01
)
