// Package models holds the constant tables of supported dive computers.
//
// A Model names the memory size, the identification fields and the ring
// buffer layout of one device. Models are selected by matching the version
// page against their signature, where zero bytes act as wildcards for the
// firmware digits.
//
// # Built-in Models
//
//	Darwin Air  logbook + profile ring, 16K
//	Vyper       marker-delimited ring, 8K
//	Spyder      marker-delimited ring, 8K
//
// Every call to Builtin returns fresh copies, so callers may modify the
// result freely.
//
// # Catalogue Files
//
// Additional models are loaded from YAML:
//
//	models:
//	  - name: Darwin Air 2
//	    signature: "DARWINAIR \0\0 32K"
//	    memory_size: 0x8000
//	    devinfo:
//	      serial: {offset: 0x08, size: 2}
//	    logbook:
//	      eop_offset: 0x8A
//	      last_offset: 0x8C
//	      logbook_begin: 0x0100
//	      entry_size: 60
//	      entry_count: 50
//	      profile_begin: 0x0CC0
//	      profile_end: 0x7FFF
//	      sample_size: 3
//	      sample_count_offset: 6
//	      fingerprint_size: 6
//
// Load it with Parse or ParseReader:
//
//	cat, err := models.Parse("models.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model, ok := cat.Match(version)
//
// Marker layouts use the keys eop_offset, begin, end, peek, end_of_profile,
// end_of_dive, fingerprint_offset and fingerprint_size.
package models
