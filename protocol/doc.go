// Package protocol implements the paged ACK/NAK link protocol used to read
// the memory of a dive computer over a serial line.
//
// # Protocol Overview
//
// Every command is gated by a single byte. The device answers ACK when it
// accepted the command, and the answer follows. Any other gate byte rejects
// the command and the host may resend it:
//
//	Command:  [CMD][ARGS...][0x00]
//	Gate:     [ACK]
//	Answer:   [PAGE(16)][CHECKSUM] ... [NAK]
//
// Where:
//   - ACK = 0x5A
//   - NAK = 0xA5, used as frame terminator at the end of an answer
//   - CHECKSUM = 8-bit additive sum of the 16 page bytes
//
// # Link
//
// Link drives the protocol over a Transport:
//
//	link := protocol.NewLink(port, protocol.DefaultLinkConfig())
//	version, err := link.Version(ctx)
//	data := make([]byte, 0x100)
//	err = link.Read(ctx, 0x0000, data)
//
// Handshake failures (timeout, unexpected gate byte) are retried up to
// MaxRetries times. Checksum and terminator failures are never retried.
//
// # Error Handling
//
// All errors carry a Kind. Use errors.Is with the sentinels:
//
//	if errors.Is(err, protocol.ErrTimeout) {
//	    // the device did not answer
//	}
package protocol
