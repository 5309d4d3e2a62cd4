package device

import (
	"time"

	"github.com/moffa90/go-divelog/models"
)

// Progress phases.
const (
	PhaseDumping    = "dumping"
	PhaseExtracting = "extracting"
	PhaseComplete   = "complete"
)

// Progress contains information about a memory dump.
// Passed to ProgressCallback after every chunk read.
type Progress struct {
	// Phase describes the current operation phase:
	//   "dumping"    - Reading the memory image
	//   "extracting" - Walking the ring buffers
	//   "complete"   - All dives were delivered
	Phase string

	// Current is the number of bytes read so far
	Current int

	// Maximum is the total number of bytes to read
	Maximum int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the dump started
	ElapsedTime time.Duration
}

// ProgressCallback is called periodically during a dump to report progress.
// Implementations should return quickly to avoid stalling the link.
//
// Example:
//
//	dev, err := device.Open(ctx, port,
//	    device.WithProgressCallback(func(p device.Progress) {
//	        fmt.Printf("[%s] %.1f%% - %d/%d bytes\n",
//	            p.Phase, p.Percentage, p.Current, p.Maximum)
//	    }),
//	)
type ProgressCallback func(Progress)

// DevInfo identifies the connected device.
type DevInfo = models.DevInfo

// DevInfoCallback is called once per Foreach, after the dump and before the
// first dive is delivered.
type DevInfoCallback func(DevInfo)

// Logger is an optional logging interface that can be provided to Open.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Warn(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	dev, err := device.Open(ctx, port, device.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Warn logs a non-fatal anomaly, such as an unknown device signature
	Warn(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
