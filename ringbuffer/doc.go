// Package ringbuffer reconstructs dive records from a dive computer memory
// image whose dives are stored in circular buffers.
//
// Two layouts are supported:
//
//   - LogbookLayout: a fixed-size logbook entry per dive plus a separate
//     profile ring. The logbook entry holds the number of samples, which
//     gives the length of the profile.
//   - MarkerLayout: one ring where dives follow each other, terminated by an
//     end-of-dive marker, with an end-of-profile marker after the newest dive.
//
// # Usage
//
//	err := ringbuffer.Extract(image, layout, fingerprint, func(dive, fp []byte) bool {
//	    dives = append(dives, append([]byte(nil), dive...))
//	    return true
//	})
//
// Dives are delivered newest first. Extraction stops at the first dive whose
// fingerprint equals the given one, without delivering it, so that only the
// dives newer than the last download are returned.
package ringbuffer
