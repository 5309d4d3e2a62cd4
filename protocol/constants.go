package protocol

import "time"

// Handshake bytes.
const (
	// ACK gates every answer: the device accepted the command
	ACK = 0x5A

	// NAK rejects a command when it is the gate byte. At the end of an answer
	// it is the frame terminator and not a failure.
	NAK = 0xA5
)

// Command opcodes.
const (
	// CmdRead reads a range of pages: {0x20, first(2), last(2), 0x00}
	CmdRead = 0x20

	// CmdVersion requests the identification page
	CmdVersion = 0x90

	// CmdKeepalive is a no-op that references the last page read
	CmdKeepalive = 0x91

	// CmdInit switches the interface cable into PPS mode
	CmdInit = 0x55

	// CmdQuit returns the device to surface mode
	CmdQuit = 0x98
)

// Page geometry.
const (
	// PageSize is the number of data bytes in one page
	PageSize = 16

	// PageBlockSize is one page payload plus its trailing checksum byte
	PageBlockSize = PageSize + 1

	// MaxPageIndex is the highest page index addressable by a 16-bit field
	MaxPageIndex = 0xFFFF
)

// Transfer defaults.
const (
	// DefaultMaxRetries is the number of resends after the first failed handshake
	DefaultMaxRetries = 2

	// DefaultMultiPage is the maximum number of pages requested per read command
	DefaultMultiPage = 4

	// DefaultRetryDelay is the pause between two handshake attempts
	DefaultRetryDelay = 100 * time.Millisecond

	// DefaultTimeout is the serial read timeout
	DefaultTimeout = 3 * time.Second

	// SettleDelay is the time given to the interface to draw power up
	SettleDelay = 100 * time.Millisecond
)

// Answer sizes.
const (
	// VersionAnswerSize is the version page, its checksum and the terminator
	VersionAnswerSize = PageSize + 2

	// KeepaliveAnswerSize is the echoed NAK plus the terminator
	KeepaliveAnswerSize = 2

	// InitReplySize is the size of the cable handshake reply
	InitReplySize = 13
)

// InitReply is the cable's answer to CmdInit in PPS mode ("PPS--OK_V2.00").
var InitReply = [InitReplySize]byte{
	0x50, 0x50, 0x53, 0x2D, 0x2D, 0x4F, 0x4B,
	0x5F, 0x56, 0x32, 0x2E, 0x30, 0x30,
}

// Default serial line settings (9600 8N1, no flow control).
const (
	DefaultBaudRate = 9600
	DefaultDataBits = 8
)
