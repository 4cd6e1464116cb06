package mnemonic

import (
	"bytes"
	_ "embed"
	"sync"
)

// embeddedTable is the table generated by tools/mkmnemonics from RFC 1345.
//
//go:embed mnemonics.dat
var embeddedTable []byte

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Load(bytes.NewReader(embeddedTable))
})

// Default returns the process-wide table built from the embedded resource.
// The first call parses it; concurrent first callers block until that single
// build finishes and every caller observes the same result.
func Default() (*Table, error) {
	return loadDefault()
}
