package device

import (
	"time"

	"github.com/moffa90/go-divelog/models"
	"github.com/moffa90/go-divelog/protocol"
)

// Config holds the device configuration.
type Config struct {
	// ProgressCallback is called during dumps to report progress (optional)
	ProgressCallback ProgressCallback

	// DevInfoCallback receives the device identification during Foreach (optional)
	DevInfoCallback DevInfoCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Timeout is the serial read timeout
	Timeout time.Duration

	// Retries is the number of resends after a failed handshake
	Retries int

	// RetryDelay is the pause between two handshake attempts
	RetryDelay time.Duration

	// MultiPage is the maximum number of pages per read command
	MultiPage int

	// Serial holds the line settings applied on open
	Serial protocol.SerialConfig

	// Model forces a model by name instead of matching the version page
	Model string

	// Models is the catalogue to identify the device from.
	// Empty selects the built-in catalogue.
	Models models.Catalogue
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Timeout:    protocol.DefaultTimeout,
		Retries:    protocol.DefaultMaxRetries,
		RetryDelay: protocol.DefaultRetryDelay,
		MultiPage:  protocol.DefaultMultiPage,
		Serial:     protocol.DefaultSerialConfig(),
	}
}

// Option is a functional option for configuring a Device.
type Option func(*Config)

// WithProgressCallback sets a callback function to track dump progress.
//
// Example:
//
//	dev, err := device.Open(ctx, port,
//	    device.WithProgressCallback(func(p device.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithDevInfoCallback sets a callback receiving the device identification.
//
// Example:
//
//	dev, err := device.Open(ctx, port,
//	    device.WithDevInfoCallback(func(info device.DevInfo) {
//	        fmt.Printf("serial %d\n", info.Serial)
//	    }),
//	)
func WithDevInfoCallback(callback DevInfoCallback) Option {
	return func(c *Config) {
		c.DevInfoCallback = callback
	}
}

// WithLogger sets a logger for the device operations.
//
// Example:
//
//	dev, err := device.Open(ctx, port, device.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTimeout sets the serial read timeout.
//
// Example:
//
//	dev, err := device.Open(ctx, port, device.WithTimeout(5*time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithRetries sets the number of resends after a failed handshake.
//
// Example:
//
//	dev, err := device.Open(ctx, port, device.WithRetries(5))
func WithRetries(retries int) Option {
	return func(c *Config) {
		if retries >= 0 {
			c.Retries = retries
		}
	}
}

// WithRetryDelay sets the pause between two handshake attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.RetryDelay = delay
		}
	}
}

// WithMultiPage sets the maximum number of pages per read command.
// Default is 4.
//
// Example:
//
//	dev, err := device.Open(ctx, port, device.WithMultiPage(1))
func WithMultiPage(pages int) Option {
	return func(c *Config) {
		if pages > 0 {
			c.MultiPage = pages
		}
	}
}

// WithSerialConfig overrides the 9600 8N1 line settings.
func WithSerialConfig(cfg protocol.SerialConfig) Option {
	return func(c *Config) {
		c.Serial = cfg
	}
}

// WithModel skips identification and uses the named model.
//
// Example:
//
//	dev, err := device.Open(ctx, port, device.WithModel("Vyper"))
func WithModel(name string) Option {
	return func(c *Config) {
		c.Model = name
	}
}

// WithModels replaces the built-in catalogue.
//
// Example:
//
//	cat, _ := models.Parse("models.yaml")
//	dev, err := device.Open(ctx, port, device.WithModels(cat))
func WithModels(catalogue models.Catalogue) Option {
	return func(c *Config) {
		c.Models = catalogue
	}
}
