package protocol

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reply is what the scripted transport makes available after one Write.
type reply struct {
	data     []byte
	writeErr error
}

// scriptedTransport answers each Write with the next scripted reply.
// Read drains the pending bytes and times out when they run short.
type scriptedTransport struct {
	replies []reply
	pending []byte
	writes  [][]byte
	sleeps  []time.Duration
	purges  int
	readErr error
	closed  bool
}

func (s *scriptedTransport) Configure(SerialConfig) error { return nil }
func (s *scriptedTransport) SetTimeout(time.Duration) error { return nil }
func (s *scriptedTransport) SetDTR(bool) error { return nil }
func (s *scriptedTransport) SetRTS(bool) error { return nil }
func (s *scriptedTransport) Sleep(d time.Duration) { s.sleeps = append(s.sleeps, d) }
func (s *scriptedTransport) Close() error { s.closed = true; return nil }

func (s *scriptedTransport) Purge(dir Direction) error {
	s.purges++
	if dir&DirectionInput != 0 {
		s.pending = nil
	}
	return nil
}

func (s *scriptedTransport) Write(p []byte) (int, error) {
	s.writes = append(s.writes, append([]byte(nil), p...))
	if len(s.replies) == 0 {
		return len(p), nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r.writeErr != nil {
		return 0, r.writeErr
	}
	s.pending = append(s.pending, r.data...)
	return len(p), nil
}

func (s *scriptedTransport) Read(p []byte) (int, error) {
	if s.readErr != nil {
		return 0, s.readErr
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	if n < len(p) {
		return n, NewError(Timeout, "read", "got %d of %d bytes", n, len(p))
	}
	return n, nil
}

func (s *scriptedTransport) push(data ...[]byte) {
	for _, d := range data {
		s.replies = append(s.replies, reply{data: d})
	}
}

func gated(answer []byte) []byte {
	return append([]byte{ACK}, answer...)
}

func TestSend(t *testing.T) {
	tests := []struct {
		name    string
		reply   []byte
		wantErr error
	}{
		{"ack", []byte{ACK}, nil},
		{"nak", []byte{NAK}, ErrProtocol},
		{"garbage", []byte{0x00}, ErrProtocol},
		{"no answer", nil, ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &scriptedTransport{}
			port.push(tt.reply)

			err := NewLink(port, DefaultLinkConfig()).Send(context.Background(), BuildVersionCmd())
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "error = %v", err)
			}
			assert.Equal(t, 1, port.purges)
			assert.Equal(t, [][]byte{BuildVersionCmd()}, port.writes)
		})
	}
}

func TestSendPurgesGarbage(t *testing.T) {
	port := &scriptedTransport{pending: []byte{0x00, 0x13}}
	port.push([]byte{ACK})

	require.NoError(t, NewLink(port, DefaultLinkConfig()).Send(context.Background(), BuildVersionCmd()))
}

func TestTransferRetriesUntilAck(t *testing.T) {
	port := &scriptedTransport{}
	port.push([]byte{NAK}, []byte{NAK}, gated([]byte{NAK, NAK}))

	link := NewLink(port, LinkConfig{MaxRetries: 2, RetryDelay: 100 * time.Millisecond, MultiPage: 4})
	answer, err := link.Transfer(context.Background(), []byte{CmdKeepalive, 0, 0, 0}, 2)

	require.NoError(t, err)
	assert.Equal(t, []byte{NAK, NAK}, answer)
	assert.Len(t, port.writes, 3)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, port.sleeps)
}

func TestTransferGivesUpAfterMaxRetries(t *testing.T) {
	port := &scriptedTransport{}
	port.push([]byte{NAK}, []byte{NAK}, []byte{NAK}, gated([]byte{NAK, NAK}))

	link := NewLink(port, LinkConfig{MaxRetries: 2, RetryDelay: time.Millisecond, MultiPage: 4})
	_, err := link.Transfer(context.Background(), []byte{CmdKeepalive, 0, 0, 0}, 2)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProtocol), "error = %v", err)
	assert.Len(t, port.writes, 3)
	assert.Len(t, port.sleeps, 2)
}

func TestTransferRetryBound(t *testing.T) {
	for maxRetries := 0; maxRetries <= 5; maxRetries++ {
		port := &scriptedTransport{}
		for i := 0; i < 10; i++ {
			port.push(nil)
		}

		link := NewLink(port, LinkConfig{MaxRetries: maxRetries, MultiPage: 1})
		_, err := link.Transfer(context.Background(), BuildVersionCmd(), VersionAnswerSize)

		require.Error(t, err)
		assert.True(t, IsTimeout(err), "error = %v", err)
		assert.Len(t, port.writes, maxRetries+1, "max retries %d", maxRetries)
	}
}

func TestTransferDoesNotRetryIOErrors(t *testing.T) {
	port := &scriptedTransport{}
	port.replies = []reply{{writeErr: errors.New("device unplugged")}, {data: gated([]byte{NAK, NAK})}}

	_, err := NewLink(port, DefaultLinkConfig()).Transfer(context.Background(), BuildVersionCmd(), 2)

	require.Error(t, err)
	assert.Equal(t, IO, KindOf(err))
	assert.Len(t, port.writes, 1)
	assert.Empty(t, port.sleeps)
}

func TestTransferBadTerminatorIsNotRetried(t *testing.T) {
	port := &scriptedTransport{}
	port.push(gated([]byte{NAK, ACK}), gated([]byte{NAK, NAK}))

	_, err := NewLink(port, DefaultLinkConfig()).Transfer(context.Background(), BuildVersionCmd(), 2)

	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
	assert.Len(t, port.writes, 1)
}

func TestTransferCancelled(t *testing.T) {
	port := &scriptedTransport{}
	port.push([]byte{NAK}, gated([]byte{NAK, NAK}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLink(port, DefaultLinkConfig()).Transfer(ctx, BuildVersionCmd(), 2)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCancelled))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, IsProtocolError(err))
	assert.Empty(t, port.writes)
}

// cancellingTransport cancels the context during the retry delay.
type cancellingTransport struct {
	scriptedTransport
	cancel context.CancelFunc
}

func (c *cancellingTransport) Sleep(d time.Duration) {
	c.cancel()
	c.scriptedTransport.Sleep(d)
}

func TestTransferCancelledMidRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	port := &cancellingTransport{cancel: cancel}
	port.push([]byte{NAK}, gated([]byte{NAK, NAK}))

	_, err := NewLink(port, DefaultLinkConfig()).Transfer(ctx, BuildVersionCmd(), 2)

	require.Error(t, err)
	assert.Equal(t, Cancelled, KindOf(err))
	assert.Len(t, port.writes, 1)
}

func TestReadPagesGroupsRequests(t *testing.T) {
	payload := make([]byte, 6*PageSize)
	for i := range payload {
		payload[i] = byte(i)
	}

	port := &scriptedTransport{}
	port.push(gated(buildReadAnswer(payload[:4*PageSize])), gated(buildReadAnswer(payload[4*PageSize:])))

	link := NewLink(port, DefaultLinkConfig())
	dst := make([]byte, len(payload))
	require.NoError(t, link.Read(context.Background(), 0x0100, dst))

	assert.Equal(t, payload, dst)
	require.Len(t, port.writes, 2)
	assert.Equal(t, []byte{CmdRead, 0x10, 0x00, 0x13, 0x00, 0x00}, port.writes[0])
	assert.Equal(t, []byte{CmdRead, 0x14, 0x00, 0x15, 0x00, 0x00}, port.writes[1])
	assert.Equal(t, 0x15, link.Last())
}

func TestReadPagesChecksumFailureIsFatal(t *testing.T) {
	payload := testPage(0x33)
	answer := buildReadAnswer(payload)
	answer[PageSize] ^= 0x01

	port := &scriptedTransport{}
	port.push(gated(answer), gated(buildReadAnswer(payload)))

	err := NewLink(port, DefaultLinkConfig()).Read(context.Background(), 0, make([]byte, PageSize))

	require.Error(t, err)
	var ce *ChecksumError
	assert.True(t, errors.As(err, &ce))
	assert.True(t, IsProtocolError(err))
	assert.Len(t, port.writes, 1)
}

func TestReadAlignment(t *testing.T) {
	link := NewLink(&scriptedTransport{}, DefaultLinkConfig())

	err := link.Read(context.Background(), 0x0008, make([]byte, PageSize))
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	err = link.Read(context.Background(), 0x0010, make([]byte, 10))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestVersion(t *testing.T) {
	page := []byte("DARWINAIR \x00\x00 16K")
	port := &scriptedTransport{}
	port.push(gated(buildReadAnswer(page)))

	version, err := NewLink(port, DefaultLinkConfig()).Version(context.Background())

	require.NoError(t, err)
	assert.Equal(t, page, version)
	assert.Equal(t, [][]byte{BuildVersionCmd()}, port.writes)
}

func TestKeepaliveReferencesLastPage(t *testing.T) {
	payload := make([]byte, 2*PageSize)
	port := &scriptedTransport{}
	port.push(gated(buildReadAnswer(payload)), gated([]byte{NAK, NAK}))

	link := NewLink(port, DefaultLinkConfig())
	require.NoError(t, link.Read(context.Background(), 0x0200, payload))
	require.NoError(t, link.Keepalive(context.Background()))

	require.Len(t, port.writes, 2)
	assert.Equal(t, []byte{CmdKeepalive, 0x21, 0x00, 0x00}, port.writes[1])
}

func TestKeepaliveUnexpectedAnswer(t *testing.T) {
	port := &scriptedTransport{}
	port.push(gated([]byte{ACK, NAK}))

	err := NewLink(port, DefaultLinkConfig()).Keepalive(context.Background())
	assert.True(t, IsProtocolError(err))
}

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		reply     []byte
		wantMatch bool
		wantErr   bool
	}{
		{"pps reply", InitReply[:], true, false},
		{"no reply", nil, true, false},
		{"other firmware", []byte("PPS--OK_V1.10"), false, false},
		{"partial reply", []byte("PPS"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &scriptedTransport{}
			port.push(tt.reply)

			match, err := NewLink(port, DefaultLinkConfig()).Init(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, match)
			assert.Equal(t, [][]byte{BuildInitCmd()}, port.writes)
		})
	}
}

func TestQuit(t *testing.T) {
	port := &scriptedTransport{}
	require.NoError(t, NewLink(port, DefaultLinkConfig()).Quit())
	assert.Equal(t, [][]byte{BuildQuitCmd()}, port.writes)
}
