package protocol

import (
	"context"
	"errors"
	"fmt"
)

// Link runs the ACK/NAK command protocol over a Transport.
//
// A Link is owned by exactly one session and is not safe for concurrent use.
// Every command waits for its complete answer before the next one is issued.
type Link struct {
	port   Transport
	config LinkConfig
	last   int
}

// NewLink creates a Link on an already configured transport.
func NewLink(port Transport, config LinkConfig) *Link {
	if port == nil {
		panic("port cannot be nil")
	}
	if config.MultiPage <= 0 {
		config.MultiPage = DefaultMultiPage
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Link{
		port:   port,
		config: config,
	}
}

// Config returns the link configuration.
func (l *Link) Config() LinkConfig {
	return l.config
}

// Last returns the index of the last page addressed by a read.
func (l *Link) Last() int {
	return l.last
}

// Send writes one command and checks the gate byte.
//
// The input queue is purged first to discard garbage bytes. Any gate byte
// other than ACK is a Protocol error.
func (l *Link) Send(ctx context.Context, cmd []byte) error {
	op := describeCmd(cmd)

	if err := ctx.Err(); err != nil {
		return newError(Cancelled, op, err)
	}

	if err := l.port.Purge(DirectionInput); err != nil {
		return WrapTransport(op, "purge input", err)
	}

	if _, err := l.port.Write(cmd); err != nil {
		return WrapTransport(op, "write command", err)
	}

	gate := []byte{NAK}
	if _, err := l.port.Read(gate); err != nil {
		return WrapTransport(op, "read gate byte", err)
	}

	if gate[0] != ACK {
		return NewError(Protocol, op, "unexpected gate byte: got 0x%02X, expected 0x%02X", gate[0], ACK)
	}

	return nil
}

// Transfer sends a command and reads an answer of exactly size bytes.
//
// The handshake is repeated while it fails with a Timeout or Protocol error,
// at most MaxRetries times, sleeping RetryDelay between attempts. Other
// errors are returned immediately. The answer itself is never retried: its
// last byte must be the NAK terminator.
func (l *Link) Transfer(ctx context.Context, cmd []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, NewError(InvalidArgument, describeCmd(cmd), "invalid answer size %d", size)
	}

	for nretries := 0; ; nretries++ {
		err := l.Send(ctx, cmd)
		if err == nil {
			break
		}
		if !IsRetryable(err) {
			return nil, err
		}
		if nretries >= l.config.MaxRetries {
			return nil, err
		}
		l.port.Sleep(l.config.RetryDelay)
	}

	answer := make([]byte, size)
	if _, err := l.port.Read(answer); err != nil {
		return nil, WrapTransport(describeCmd(cmd), "read answer", err)
	}

	if err := CheckTerminator(answer); err != nil {
		return nil, err
	}

	return answer, nil
}

// ReadPages reads len(dst)/PageSize consecutive pages starting at page first.
// Pages are grouped into requests of at most MultiPage pages.
func (l *Link) ReadPages(ctx context.Context, first int, dst []byte) error {
	if len(dst)%PageSize != 0 {
		return NewError(InvalidArgument, "read pages", "size %d is not a multiple of the page size %d", len(dst), PageSize)
	}

	page := first
	for len(dst) > 0 {
		npages := len(dst) / PageSize
		if npages > l.config.MultiPage {
			npages = l.config.MultiPage
		}

		last := page + npages - 1
		cmd, err := BuildReadCmd(page, last)
		if err != nil {
			return err
		}

		answer, err := l.Transfer(ctx, cmd, ReadAnswerSize(npages))
		if err != nil {
			return err
		}

		l.last = last

		if err := ParsePages(answer, npages, dst); err != nil {
			return fmt.Errorf("read pages %d-%d: %w", page, last, err)
		}

		dst = dst[npages*PageSize:]
		page += npages
	}

	return nil
}

// Read reads len(data) bytes at address. Both must be page aligned.
func (l *Link) Read(ctx context.Context, address int, data []byte) error {
	if address < 0 || address%PageSize != 0 || len(data)%PageSize != 0 {
		return NewError(InvalidArgument, "read",
			"address 0x%04X and size %d must be multiples of %d", address, len(data), PageSize)
	}
	return l.ReadPages(ctx, address/PageSize, data)
}

// Version requests and validates the identification page.
func (l *Link) Version(ctx context.Context) ([]byte, error) {
	answer, err := l.Transfer(ctx, BuildVersionCmd(), VersionAnswerSize)
	if err != nil {
		return nil, err
	}
	return ParseVersionAnswer(answer)
}

// Keepalive sends a no-op referencing the last page read. The device must
// echo a NAK byte.
func (l *Link) Keepalive(ctx context.Context) error {
	cmd, err := BuildKeepaliveCmd(l.last)
	if err != nil {
		return err
	}

	answer, err := l.Transfer(ctx, cmd, KeepaliveAnswerSize)
	if err != nil {
		return err
	}

	return ParseKeepaliveAnswer(answer)
}

// Init performs the cable handshake. It reports whether the reply matched
// InitReply. A cable that does not answer at all is accepted; a mismatching
// reply is left to the caller to report, since firmware variants answer
// slightly differently.
func (l *Link) Init(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, newError(Cancelled, "init", err)
	}

	if _, err := l.port.Write(BuildInitCmd()); err != nil {
		return false, WrapTransport("init", "write command", err)
	}

	reply := make([]byte, InitReplySize)
	n, err := l.port.Read(reply)
	if err != nil {
		if n == 0 && IsTimeout(err) {
			return true, nil
		}
		return false, WrapTransport("init", "read reply", err)
	}

	return MatchInitReply(reply), nil
}

// Quit switches the device back to surface mode. No answer is expected.
func (l *Link) Quit() error {
	if _, err := l.port.Write(BuildQuitCmd()); err != nil {
		return WrapTransport("quit", "write command", err)
	}
	return nil
}

// WrapTransport attaches op and what to a transport error. It keeps the kind
// of typed errors and classifies anything else as IO.
func WrapTransport(op, what string, err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return &Error{Kind: pe.Kind, Op: op, Err: fmt.Errorf("%s: %w", what, err)}
	}
	return newError(IO, op, fmt.Errorf("%s: %w", what, err))
}
