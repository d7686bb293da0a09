package ingest

import "errors"

// ErrInputMalformed covers CSV parse failures and schema mismatches.
var ErrInputMalformed = errors.New("input malformed")

// ErrDanglingReference covers an unknown station id referenced from
// trips, footpaths, or groups.
var ErrDanglingReference = errors.New("dangling station reference")
