package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildReadCmd constructs a Read Pages command frame for pages first..last
// inclusive.
//
// Frame structure:
//
//	[CMD][FIRST_L][FIRST_H][LAST_L][LAST_H][0x00]
func BuildReadCmd(first, last int) ([]byte, error) {
	if first < 0 || last < first || last > MaxPageIndex {
		return nil, NewError(InvalidArgument, "build read command", "invalid page range %d-%d", first, last)
	}

	frame := make([]byte, 6)
	frame[0] = CmdRead
	binary.LittleEndian.PutUint16(frame[1:3], uint16(first))
	binary.LittleEndian.PutUint16(frame[3:5], uint16(last))
	frame[5] = 0x00

	return frame, nil
}

// BuildKeepaliveCmd constructs a Keepalive command frame referencing the
// last page read.
//
// Frame structure:
//
//	[CMD][LAST_L][LAST_H][0x00]
func BuildKeepaliveCmd(last int) ([]byte, error) {
	if last < 0 || last > MaxPageIndex {
		return nil, NewError(InvalidArgument, "build keepalive command", "invalid page index %d", last)
	}

	frame := make([]byte, 4)
	frame[0] = CmdKeepalive
	binary.LittleEndian.PutUint16(frame[1:3], uint16(last))
	frame[3] = 0x00

	return frame, nil
}

// BuildVersionCmd constructs a Version command frame.
//
// Frame structure:
//
//	[CMD][0x00]
func BuildVersionCmd() []byte {
	return []byte{CmdVersion, 0x00}
}

// BuildInitCmd constructs the cable initialization frame.
func BuildInitCmd() []byte {
	return []byte{CmdInit, 0x00}
}

// BuildQuitCmd constructs the frame that switches the device back to
// surface mode. The device does not answer it.
func BuildQuitCmd() []byte {
	return []byte{CmdQuit, 0x00}
}

// ReadAnswerSize returns the number of bytes answered to a read of npages
// pages: one payload+checksum block per page and a trailing terminator.
func ReadAnswerSize(npages int) int {
	return PageBlockSize*npages + 1
}

// describeCmd returns a short name for log and error messages.
func describeCmd(cmd []byte) string {
	if len(cmd) == 0 {
		return "empty command"
	}
	switch cmd[0] {
	case CmdRead:
		return "read"
	case CmdVersion:
		return "version"
	case CmdKeepalive:
		return "keepalive"
	case CmdInit:
		return "init"
	case CmdQuit:
		return "quit"
	default:
		return fmt.Sprintf("command 0x%02X", cmd[0])
	}
}
