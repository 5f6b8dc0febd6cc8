package pipeline

import "github.com/go-logr/logr"

// discardLogger is the default sink for a freshly constructed node,
// overridden with WithLogr. Matches the convention of leaving sink
// selection (stdr, zapr, funcr...) to the caller.
func discardLogger() logr.Logger { return logr.Discard() }
