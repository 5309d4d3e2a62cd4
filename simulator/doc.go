// Package simulator provides an in-memory dive computer for tests and
// examples.
//
// Device answers the init, version, read, keepalive and quit commands from a
// memory image and implements protocol.Transport:
//
//	m, _ := models.Lookup("Darwin Air")
//	image, _, _ := simulator.Generate(m, 5)
//	sim := simulator.New(image, simulator.VersionPage(m, "01"))
//
//	dev, err := device.Open(ctx, sim)
//
// Faults are injected per command to exercise the retry paths:
//
//	sim.Inject(simulator.FaultNAK, simulator.FaultNone, simulator.FaultChecksum)
package simulator
