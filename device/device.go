package device

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-divelog/models"
	"github.com/moffa90/go-divelog/protocol"
	"github.com/moffa90/go-divelog/ringbuffer"
)

// MaxImageSize is the largest memory image a model may declare.
const MaxImageSize = 1 << 20

// Interface is the capability set shared by every dive computer backend.
type Interface interface {
	Read(ctx context.Context, address int, data []byte) error
	Dump(ctx context.Context, buf []byte) ([]byte, error)
	Foreach(ctx context.Context, fn ringbuffer.DiveFunc) error
	SetFingerprint(fingerprint []byte) error
	Close() error
}

var _ Interface = (*Device)(nil)

// Device is an open session with one dive computer.
//
// A Device exclusively owns its transport and is not safe for concurrent
// use. Every operation runs to completion before the next one starts.
type Device struct {
	port        protocol.Transport
	link        *protocol.Link
	config      Config
	model       *models.Model
	version     []byte
	fingerprint []byte
	closed      bool
}

// Open runs the connection sequence on an opened transport and identifies
// the device:
//  1. Configure the line (9600 8N1 by default) and the read timeout
//  2. Assert DTR and RTS and let the interface power up
//  3. Purge both queues
//  4. Switch the cable into PPS mode
//  5. Request the version page and select the model
//
// An unknown version page selects the first model of the catalogue. The
// transport is closed when Open fails.
//
// Example:
//
//	port, err := serialport.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dev, err := device.Open(ctx, port)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
func Open(ctx context.Context, port protocol.Transport, opts ...Option) (*Device, error) {
	if port == nil {
		return nil, protocol.NewError(protocol.InvalidArgument, "open", "port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Device{
		port:   port,
		config: cfg,
		link: protocol.NewLink(port, protocol.LinkConfig{
			MaxRetries: cfg.Retries,
			RetryDelay: cfg.RetryDelay,
			MultiPage:  cfg.MultiPage,
		}),
	}

	if err := d.open(ctx); err != nil {
		if cerr := port.Close(); cerr != nil {
			d.logError("close after failed open", "error", cerr)
		}
		return nil, err
	}

	return d, nil
}

func (d *Device) open(ctx context.Context) error {
	catalogue := d.config.Models
	if len(catalogue) == 0 {
		catalogue = models.Builtin()
	}
	for _, m := range d.config.Models {
		if m == nil {
			return protocol.NewError(protocol.InvalidArgument, "open", "nil model in catalogue")
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("catalogue: %w", err)
		}
	}

	var forced *models.Model
	if d.config.Model != "" {
		m, err := catalogue.Lookup(d.config.Model)
		if err != nil {
			return &UnsupportedModelError{Name: d.config.Model}
		}
		forced = m
	}

	if err := d.port.Configure(d.config.Serial); err != nil {
		return protocol.WrapTransport("open", "configure line", err)
	}
	if err := d.port.SetTimeout(d.config.Timeout); err != nil {
		return protocol.WrapTransport("open", "set timeout", err)
	}
	if err := d.port.SetDTR(true); err != nil {
		return protocol.WrapTransport("open", "set dtr", err)
	}
	if err := d.port.SetRTS(true); err != nil {
		return protocol.WrapTransport("open", "set rts", err)
	}

	d.port.Sleep(protocol.SettleDelay)

	if err := d.port.Purge(protocol.DirectionAll); err != nil {
		return protocol.WrapTransport("open", "purge", err)
	}

	ok, err := d.link.Init(ctx)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if !ok {
		d.logWarn("unexpected cable handshake reply")
	}

	d.port.Sleep(protocol.SettleDelay)

	version, err := d.link.Version(ctx)
	if err != nil {
		return fmt.Errorf("version: %w", err)
	}
	d.version = version

	switch {
	case forced != nil:
		d.model = forced
		if !forced.Matches(version) {
			d.logWarn("version page does not match forced model",
				"model", forced.Name,
				"version", fmt.Sprintf("%q", version),
			)
		}
	default:
		m, ok := catalogue.Match(version)
		if !ok {
			m = catalogue.Default()
			if m == nil {
				return &UnsupportedModelError{}
			}
			d.logWarn("unsupported device detected, using default model",
				"version", fmt.Sprintf("%q", version),
				"model", m.Name,
			)
		}
		d.model = m
	}

	if d.model.MemorySize > MaxImageSize {
		return protocol.NewError(protocol.OutOfMemory, "open",
			"%s memory size 0x%X exceeds 0x%X", d.model.Name, d.model.MemorySize, MaxImageSize)
	}

	d.logInfo("device identified",
		"model", d.model.Name,
		"memory_size", d.model.MemorySize,
	)

	return nil
}

// Model returns a copy of the selected model.
func (d *Device) Model() *models.Model {
	return d.model.Clone()
}

// Version returns the version page reported by the device.
func (d *Device) Version() []byte {
	return append([]byte(nil), d.version...)
}

// Read reads len(data) bytes of device memory at address. Both must be
// multiples of the page size and the range must lie within the memory.
func (d *Device) Read(ctx context.Context, address int, data []byte) error {
	if err := d.checkOpen("read"); err != nil {
		return err
	}
	if address < 0 || address%protocol.PageSize != 0 || len(data)%protocol.PageSize != 0 {
		return &AlignmentError{Address: address, Size: len(data)}
	}
	if address+len(data) > d.model.MemorySize {
		return &RangeError{Address: address, Size: len(data), MemorySize: d.model.MemorySize}
	}

	return d.link.Read(ctx, address, data)
}

// Dump clears buf, resizes it to the memory size, reads the whole device
// memory into it and returns the image. Progress is reported after every chunk.
func (d *Device) Dump(ctx context.Context, buf []byte) ([]byte, error) {
	if err := d.checkOpen("dump"); err != nil {
		return nil, err
	}

	size := d.model.MemorySize
	if cap(buf) < size {
		buf = make([]byte, size)
	}
	buf = buf[:size]
	clear(buf)

	startTime := time.Now()
	chunk := protocol.PageSize * d.link.Config().MultiPage

	d.reportProgress(Progress{
		Phase:   PhaseDumping,
		Maximum: size,
	})

	for offset := 0; offset < size; offset += chunk {
		n := chunk
		if offset+n > size {
			n = size - offset
		}

		if err := d.link.Read(ctx, offset, buf[offset:offset+n]); err != nil {
			return nil, fmt.Errorf("dump at 0x%04X: %w", offset, err)
		}

		d.reportProgress(Progress{
			Phase:       PhaseDumping,
			Current:     offset + n,
			Maximum:     size,
			Percentage:  float64(offset+n) / float64(size) * 100,
			ElapsedTime: time.Since(startTime),
		})
	}

	d.logDebug("memory dumped",
		"bytes", size,
		"elapsed", time.Since(startTime).String(),
	)

	return buf, nil
}

// Foreach dumps the memory, reports the device identification and passes
// every dive newer than the fingerprint to fn, newest first.
//
// Example:
//
//	err := dev.Foreach(ctx, func(dive, fingerprint []byte) bool {
//	    dives = append(dives, append([]byte(nil), dive...))
//	    return true
//	})
func (d *Device) Foreach(ctx context.Context, fn ringbuffer.DiveFunc) error {
	data, err := d.Dump(ctx, nil)
	if err != nil {
		return err
	}

	info := d.model.DevInfo.Decode(data)
	d.logInfo("device info",
		"model", info.Model,
		"firmware", info.Firmware,
		"serial", info.Serial,
	)
	if d.config.DevInfoCallback != nil {
		d.config.DevInfoCallback(info)
	}

	return d.ExtractDives(data, fn)
}

// ExtractDives walks an already dumped memory image with the stored
// fingerprint.
func (d *Device) ExtractDives(data []byte, fn ringbuffer.DiveFunc) error {
	if len(data) != d.model.MemorySize {
		return protocol.NewError(protocol.InvalidArgument, "extract dives",
			"image size %d does not match memory size %d", len(data), d.model.MemorySize)
	}

	d.reportProgress(Progress{
		Phase:      PhaseExtracting,
		Current:    len(data),
		Maximum:    len(data),
		Percentage: 100,
	})

	count := 0
	err := ringbuffer.Extract(data, d.model.Layout(), d.fingerprint, func(dive, fingerprint []byte) bool {
		count++
		if fn == nil {
			return true
		}
		return fn(dive, fingerprint)
	})
	if err != nil {
		d.logError("dive extraction failed", "error", err, "dives", count)
		return fmt.Errorf("extract dives: %w", err)
	}

	d.reportProgress(Progress{
		Phase:      PhaseComplete,
		Current:    len(data),
		Maximum:    len(data),
		Percentage: 100,
	})

	d.logInfo("dives extracted", "dives", count)

	return nil
}

// SetFingerprint stores the fingerprint of the newest dive already
// downloaded. Extraction stops before that dive. An empty fingerprint
// clears it.
func (d *Device) SetFingerprint(fingerprint []byte) error {
	if len(fingerprint) == 0 {
		d.fingerprint = nil
		return nil
	}

	if expected := d.model.FingerprintSize(); len(fingerprint) != expected {
		return &FingerprintSizeError{Expected: expected, Actual: len(fingerprint)}
	}

	d.fingerprint = append([]byte(nil), fingerprint...)
	return nil
}

// Fingerprint returns a copy of the stored fingerprint.
func (d *Device) Fingerprint() []byte {
	if d.fingerprint == nil {
		return nil
	}
	return append([]byte(nil), d.fingerprint...)
}

// Keepalive keeps the session from timing out between long pauses.
func (d *Device) Keepalive(ctx context.Context) error {
	if err := d.checkOpen("keepalive"); err != nil {
		return err
	}
	return d.link.Keepalive(ctx)
}

// Close returns the device to surface mode and closes the transport. A
// failed quit command is logged and does not prevent closing.
func (d *Device) Close() error {
	if err := d.checkOpen("close"); err != nil {
		return err
	}
	d.closed = true

	if err := d.link.Quit(); err != nil {
		d.logError("quit failed", "error", err)
	}

	if err := d.port.Close(); err != nil {
		return protocol.WrapTransport("close", "close port", err)
	}

	return nil
}

func (d *Device) checkOpen(op string) error {
	if d.closed {
		return protocol.NewError(protocol.IO, op, "device is closed")
	}
	return nil
}

// reportProgress calls the progress callback if configured.
func (d *Device) reportProgress(progress Progress) {
	if d.config.ProgressCallback != nil {
		d.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (d *Device) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (d *Device) logInfo(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning if a logger is configured.
func (d *Device) logWarn(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (d *Device) logError(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, keysAndValues...)
	}
}
