// Package serialport implements protocol.Transport on go.bug.st/serial.
//
//	port, err := serialport.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dev, err := device.Open(ctx, port)
//
// Only flow control none is supported. Read blocks until the buffer is full
// or the read timeout elapses without data, in which case it returns a
// Timeout error together with the number of bytes received.
package serialport
