package serialport

import (
	"time"

	"go.bug.st/serial"

	"github.com/moffa90/go-divelog/protocol"
)

// Port is a protocol.Transport on a serial port.
type Port struct {
	port    serial.Port
	name    string
	timeout time.Duration
}

var _ protocol.Transport = (*Port)(nil)

// Open opens the named serial port at 9600 8N1. The line settings are
// normally replaced by device.Open through Configure.
//
// Example:
//
//	port, err := serialport.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Open(name string) (*Port, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: protocol.DefaultBaudRate,
		DataBits: protocol.DefaultDataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, protocol.WrapTransport("open", name, err)
	}
	return New(p, name), nil
}

// New wraps an already opened serial port.
func New(p serial.Port, name string) *Port {
	if p == nil {
		panic("port cannot be nil")
	}
	return &Port{
		port:    p,
		name:    name,
		timeout: protocol.DefaultTimeout,
	}
}

// List returns the names of the serial ports present on the system.
func List() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, protocol.WrapTransport("list", "enumerate ports", err)
	}
	return ports, nil
}

// Name returns the port name passed to Open.
func (p *Port) Name() string {
	return p.name
}

// Configure implements protocol.Transport. Flow control is not supported.
func (p *Port) Configure(cfg protocol.SerialConfig) error {
	mode, err := modeOf(cfg)
	if err != nil {
		return err
	}
	if err := p.port.SetMode(mode); err != nil {
		return protocol.WrapTransport("configure", p.name, err)
	}
	return nil
}

func modeOf(cfg protocol.SerialConfig) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
	}

	if cfg.BaudRate <= 0 {
		return nil, protocol.NewError(protocol.InvalidArgument, "configure", "invalid baud rate %d", cfg.BaudRate)
	}
	if cfg.DataBits < 5 || cfg.DataBits > 8 {
		return nil, protocol.NewError(protocol.InvalidArgument, "configure", "invalid data bits %d", cfg.DataBits)
	}

	switch cfg.Parity {
	case protocol.ParityNone:
		mode.Parity = serial.NoParity
	case protocol.ParityOdd:
		mode.Parity = serial.OddParity
	case protocol.ParityEven:
		mode.Parity = serial.EvenParity
	case protocol.ParityMark:
		mode.Parity = serial.MarkParity
	case protocol.ParitySpace:
		mode.Parity = serial.SpaceParity
	default:
		return nil, protocol.NewError(protocol.InvalidArgument, "configure", "invalid parity %d", cfg.Parity)
	}

	switch cfg.StopBits {
	case protocol.StopBitsOne:
		mode.StopBits = serial.OneStopBit
	case protocol.StopBitsOnePointFive:
		mode.StopBits = serial.OnePointFiveStopBits
	case protocol.StopBitsTwo:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, protocol.NewError(protocol.InvalidArgument, "configure", "invalid stop bits %d", cfg.StopBits)
	}

	if cfg.FlowControl != protocol.FlowControlNone {
		return nil, protocol.NewError(protocol.InvalidArgument, "configure", "flow control %d is not supported", cfg.FlowControl)
	}

	return mode, nil
}

// SetTimeout implements protocol.Transport.
func (p *Port) SetTimeout(timeout time.Duration) error {
	if err := p.port.SetReadTimeout(timeout); err != nil {
		return protocol.WrapTransport("set timeout", p.name, err)
	}
	p.timeout = timeout
	return nil
}

// SetDTR implements protocol.Transport.
func (p *Port) SetDTR(on bool) error {
	if err := p.port.SetDTR(on); err != nil {
		return protocol.WrapTransport("set dtr", p.name, err)
	}
	return nil
}

// SetRTS implements protocol.Transport.
func (p *Port) SetRTS(on bool) error {
	if err := p.port.SetRTS(on); err != nil {
		return protocol.WrapTransport("set rts", p.name, err)
	}
	return nil
}

// Purge implements protocol.Transport.
func (p *Port) Purge(dir protocol.Direction) error {
	if dir&protocol.DirectionInput != 0 {
		if err := p.port.ResetInputBuffer(); err != nil {
			return protocol.WrapTransport("purge", p.name, err)
		}
	}
	if dir&protocol.DirectionOutput != 0 {
		if err := p.port.ResetOutputBuffer(); err != nil {
			return protocol.WrapTransport("purge", p.name, err)
		}
	}
	return nil
}

// Sleep implements protocol.Transport.
func (p *Port) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Read implements protocol.Transport. It keeps reading until p is full. A
// read returning no data means the timeout elapsed.
func (p *Port) Read(buf []byte) (int, error) {
	got := 0
	for got < len(buf) {
		n, err := p.port.Read(buf[got:])
		if err != nil {
			return got, protocol.WrapTransport("read", p.name, err)
		}
		if n == 0 {
			return got, protocol.NewError(protocol.Timeout, "read",
				"%s: got %d of %d bytes within %s", p.name, got, len(buf), p.timeout)
		}
		got += n
	}
	return got, nil
}

// Write implements protocol.Transport.
func (p *Port) Write(buf []byte) (int, error) {
	sent := 0
	for sent < len(buf) {
		n, err := p.port.Write(buf[sent:])
		if err != nil {
			return sent, protocol.WrapTransport("write", p.name, err)
		}
		sent += n
	}
	return sent, nil
}

// Close implements protocol.Transport.
func (p *Port) Close() error {
	if err := p.port.Close(); err != nil {
		return protocol.WrapTransport("close", p.name, err)
	}
	return nil
}
