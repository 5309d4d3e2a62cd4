// Package device provides a high-level API for downloading dives from dive
// computers.
//
// # Overview
//
// This package runs the complete download sequence:
//   - Configuring the serial line and powering the interface
//   - Switching the cable into PPS mode
//   - Identifying the model from its version page
//   - Dumping the memory in checksummed multi-page reads
//   - Walking the ring buffers and delivering each dive, newest first
//
// # Basic Usage
//
//	port, err := serialport.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dev, err := device.Open(context.Background(), port)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	err = dev.Foreach(context.Background(), func(dive, fingerprint []byte) bool {
//	    fmt.Printf("dive: %d bytes\n", len(dive))
//	    return true
//	})
//
// Dive and fingerprint slices are only valid during the callback.
//
// # Incremental Downloads
//
// Store the fingerprint of the newest dive and pass it back next time.
// Extraction stops as soon as it reaches that dive:
//
//	if err := dev.SetFingerprint(last); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration Options
//
//	dev, err := device.Open(ctx, port,
//	    device.WithProgressCallback(progressFunc),
//	    device.WithDevInfoCallback(devInfoFunc),
//	    device.WithLogger(myLogger),
//	    device.WithTimeout(3*time.Second),
//	    device.WithRetries(2),
//	    device.WithMultiPage(4),
//	    device.WithModel("Vyper"),
//	)
//
// # Context Support
//
// Cancellation is checked before every command sent to the device:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
//	defer cancel()
//
//	err := dev.Foreach(ctx, fn)
//
// # Error Handling
//
// Every error carries a protocol.Kind and matches the protocol sentinels
// with errors.Is. The package adds structured error types, all matching
// protocol.ErrInvalidArgument:
//   - AlignmentError: Address or size is not page aligned
//   - RangeError: Read extends past the device memory
//   - FingerprintSizeError: Fingerprint length does not fit the model
//   - UnsupportedModelError: Forced model is not in the catalogue
//
// # Hardware Independence
//
// The session runs on any protocol.Transport. Package serialport provides
// one for real serial ports and package simulator an in-memory device.
package device
