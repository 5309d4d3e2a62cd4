package protocol

import "time"

// Parity selects the serial parity mode.
type Parity int

// Parity modes.
const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

// StopBits selects the number of serial stop bits.
type StopBits int

// Stop bit modes.
const (
	StopBitsOne StopBits = iota
	StopBitsOnePointFive
	StopBitsTwo
)

// FlowControl selects the serial flow control mode.
type FlowControl int

// Flow control modes.
const (
	FlowControlNone FlowControl = iota
	FlowControlHardware
	FlowControlSoftware
)

// Direction selects which queue Purge discards.
type Direction int

// Queue directions.
const (
	DirectionInput Direction = 1 << iota
	DirectionOutput

	DirectionAll = DirectionInput | DirectionOutput
)

// SerialConfig holds the line settings passed to Transport.Configure.
type SerialConfig struct {
	// BaudRate is the line speed in bits per second
	BaudRate int

	// DataBits is the number of data bits per character (5-8)
	DataBits int

	// Parity is the parity mode
	Parity Parity

	// StopBits is the number of stop bits
	StopBits StopBits

	// FlowControl is the flow control mode
	FlowControl FlowControl
}

// DefaultSerialConfig returns 9600 8N1 without flow control.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		BaudRate:    DefaultBaudRate,
		DataBits:    DefaultDataBits,
		Parity:      ParityNone,
		StopBits:    StopBitsOne,
		FlowControl: FlowControlNone,
	}
}

// Transport is the blocking byte channel the link runs on. Implementations
// are opened by their own package (see serialport) and handed over.
//
// Read must either fill p completely or return an error. When the timeout
// elapses first it returns the number of bytes received and an error of
// kind Timeout.
type Transport interface {
	Configure(cfg SerialConfig) error
	SetTimeout(timeout time.Duration) error
	SetDTR(on bool) error
	SetRTS(on bool) error
	Purge(dir Direction) error
	Sleep(d time.Duration)
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// LinkConfig holds the retry and paging parameters of a Link.
type LinkConfig struct {
	// MaxRetries is the number of resends after a failed handshake
	MaxRetries int

	// RetryDelay is the pause between two handshake attempts
	RetryDelay time.Duration

	// MultiPage is the maximum number of pages per read command
	MultiPage int
}

// DefaultLinkConfig returns the protocol defaults.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		MultiPage:  DefaultMultiPage,
	}
}
