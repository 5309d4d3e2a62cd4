package simulator

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/moffa90/go-divelog/protocol"
)

// Fault is an error condition injected into the answer of one command.
type Fault int

// Injectable faults.
const (
	// FaultNone answers normally
	FaultNone Fault = iota

	// FaultNAK answers with a NAK gate byte instead of ACK
	FaultNAK

	// FaultSilent drops the command without answering, so the reader times out
	FaultSilent

	// FaultChecksum corrupts the checksum of the first page of the answer
	FaultChecksum

	// FaultTerminator replaces the NAK frame terminator
	FaultTerminator

	// FaultTruncate sends the gate byte but only half of the answer
	FaultTruncate
)

func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultNAK:
		return "nak"
	case FaultSilent:
		return "silent"
	case FaultChecksum:
		return "checksum"
	case FaultTerminator:
		return "terminator"
	case FaultTruncate:
		return "truncate"
	default:
		return "unknown"
	}
}

// Device is an in-memory dive computer speaking the paged ACK/NAK protocol.
// It implements protocol.Transport, so it can be handed to device.Open in
// place of a serial port.
//
// Answers are queued on Write and consumed by Read. Sleep returns
// immediately and only records the requested duration.
type Device struct {
	mu sync.Mutex

	memory    []byte
	version   []byte
	initReply []byte

	pending []byte
	faults  []Fault

	config   protocol.SerialConfig
	timeout  time.Duration
	dtr, rts bool
	slept    time.Duration
	commands [][]byte
	closed   bool
	quit     bool
}

// Option configures a Device.
type Option func(*Device)

// WithInitReply sets the reply to the cable handshake. A nil reply makes the
// device ignore the handshake.
func WithInitReply(reply []byte) Option {
	return func(d *Device) {
		d.initReply = append([]byte(nil), reply...)
	}
}

// New creates a Device serving a copy of memory and the given version page.
// memory must be a multiple of the page size.
func New(memory, version []byte, opts ...Option) *Device {
	if len(memory)%protocol.PageSize != 0 {
		panic("memory size must be a multiple of the page size")
	}

	page := make([]byte, protocol.PageSize)
	copy(page, version)

	d := &Device{
		memory:    append([]byte(nil), memory...),
		version:   page,
		initReply: append([]byte(nil), protocol.InitReply[:]...),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Inject queues faults for the next commands that expect an answer, one
// fault per command.
func (d *Device) Inject(faults ...Fault) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults = append(d.faults, faults...)
}

// Memory returns the memory served by the device. Writes to the returned
// slice change what subsequent reads return.
func (d *Device) Memory() []byte {
	return d.memory
}

// Commands returns a copy of every command written so far.
func (d *Device) Commands() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmds := make([][]byte, len(d.commands))
	for i, c := range d.commands {
		cmds[i] = append([]byte(nil), c...)
	}
	return cmds
}

// Config returns the last line settings applied with Configure.
func (d *Device) Config() protocol.SerialConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config
}

// Timeout returns the read timeout set with SetTimeout.
func (d *Device) Timeout() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timeout
}

// Lines reports the state of the DTR and RTS lines.
func (d *Device) Lines() (dtr, rts bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dtr, d.rts
}

// Slept returns the sum of all durations passed to Sleep.
func (d *Device) Slept() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slept
}

// Closed reports whether Close was called.
func (d *Device) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// QuitReceived reports whether the quit command was received.
func (d *Device) QuitReceived() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quit
}

// Configure implements protocol.Transport.
func (d *Device) Configure(cfg protocol.SerialConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errClosed("configure")
	}
	d.config = cfg
	return nil
}

// SetTimeout implements protocol.Transport.
func (d *Device) SetTimeout(timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errClosed("set timeout")
	}
	d.timeout = timeout
	return nil
}

// SetDTR implements protocol.Transport.
func (d *Device) SetDTR(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errClosed("set dtr")
	}
	d.dtr = on
	return nil
}

// SetRTS implements protocol.Transport.
func (d *Device) SetRTS(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errClosed("set rts")
	}
	d.rts = on
	return nil
}

// Purge implements protocol.Transport. Only pending answer bytes are held,
// so purging the output queue is a no-op.
func (d *Device) Purge(dir protocol.Direction) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errClosed("purge")
	}
	if dir&protocol.DirectionInput != 0 {
		d.pending = nil
	}
	return nil
}

// Sleep implements protocol.Transport.
func (d *Device) Sleep(dur time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slept += dur
}

// Read implements protocol.Transport. It returns a Timeout error when fewer
// bytes than requested are pending.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, errClosed("read")
	}

	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	if n < len(p) {
		return n, protocol.NewError(protocol.Timeout, "read", "received %d of %d bytes", n, len(p))
	}
	return n, nil
}

// Write implements protocol.Transport. Every write is one complete command.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, errClosed("write")
	}
	if len(p) == 0 {
		return 0, nil
	}

	d.commands = append(d.commands, append([]byte(nil), p...))

	switch p[0] {
	case protocol.CmdInit:
		d.handleInit()
	case protocol.CmdQuit:
		d.quit = true
	case protocol.CmdVersion:
		d.answer(d.handleVersion())
	case protocol.CmdRead:
		d.answer(d.handleRead(p))
	case protocol.CmdKeepalive:
		d.answer(d.handleKeepalive(p))
	default:
		d.pending = append(d.pending, protocol.NAK)
	}

	return len(p), nil
}

// Close implements protocol.Transport.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errClosed("close")
	}
	d.closed = true
	d.pending = nil
	return nil
}

func (d *Device) handleInit() {
	d.pending = append(d.pending, d.initReply...)
}

func (d *Device) handleVersion() []byte {
	return d.pages(d.version)
}

// handleRead answers {0x20, first lo, first hi, last lo, last hi, 0x00}.
// A nil answer rejects the command.
func (d *Device) handleRead(cmd []byte) []byte {
	if len(cmd) != 6 {
		return nil
	}

	first := int(binary.LittleEndian.Uint16(cmd[1:3]))
	last := int(binary.LittleEndian.Uint16(cmd[3:5]))
	npages := len(d.memory) / protocol.PageSize
	if first > last || last >= npages {
		return nil
	}

	return d.pages(d.memory[first*protocol.PageSize : (last+1)*protocol.PageSize])
}

func (d *Device) handleKeepalive(cmd []byte) []byte {
	if len(cmd) != 4 {
		return nil
	}
	return []byte{protocol.NAK, protocol.NAK}
}

// pages frames data as checksummed pages followed by the NAK terminator.
func (d *Device) pages(data []byte) []byte {
	answer := make([]byte, 0, protocol.ReadAnswerSize(len(data)/protocol.PageSize))
	for offset := 0; offset < len(data); offset += protocol.PageSize {
		page := data[offset : offset+protocol.PageSize]
		answer = append(answer, page...)
		answer = append(answer, protocol.CalculatePageChecksum(page))
	}
	return append(answer, protocol.NAK)
}

// answer queues the gate byte and answer, applying the next pending fault.
func (d *Device) answer(answer []byte) {
	if answer == nil {
		d.pending = append(d.pending, protocol.NAK)
		return
	}

	fault := FaultNone
	if len(d.faults) > 0 {
		fault = d.faults[0]
		d.faults = d.faults[1:]
	}

	switch fault {
	case FaultNAK:
		d.pending = append(d.pending, protocol.NAK)
		return
	case FaultSilent:
		return
	case FaultChecksum:
		if len(answer) > protocol.PageSize {
			answer[protocol.PageSize]++
		}
	case FaultTerminator:
		answer[len(answer)-1] = protocol.ACK
	case FaultTruncate:
		answer = answer[:len(answer)/2]
	}

	d.pending = append(d.pending, protocol.ACK)
	d.pending = append(d.pending, answer...)
}

func errClosed(op string) error {
	return protocol.NewError(protocol.IO, op, "device is closed")
}
