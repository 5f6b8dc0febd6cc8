// Package signals implements the low-level sender/receiver/slot/callback
// fabric that the pipeline package builds its port wiring on top of. It
// knows nothing about ports, nodes, or dirty state — it is a generic,
// type-erased publish/subscribe primitive with two knobs: which callback
// fires when more than one matches (Invocation), and how long a callback's
// target is kept alive (Tracking).
package signals

// Kind identifies a concrete signal type for dispatch purposes.
type Kind string

const (
	KindModified                Kind = "Modified"
	KindUpdate                  Kind = "Update"
	KindInputSet                Kind = "InputSet"
	KindInputSetToSharedPointer Kind = "InputSetToSharedPointer"
	KindInputUnset              Kind = "InputUnset"
	KindInputAdded              Kind = "InputAdded"
	KindInputsCleared           Kind = "InputsCleared"
	KindOutputPointerSet        Kind = "OutputPointerSet"
)

// Signal is implemented by every concrete signal value. Kinds reports the
// signal's type together with every base type it stands in for, ordered
// from most specific to least — the Go stand-in for the C++ source's
// signal inheritance chains (e.g. InputSet derives from Modified). A
// callback registered for Modified fires for an emitted InputSet because
// KindModified appears in InputSet's chain.
type Signal interface {
	Kinds() []Kind
}

// Modified is the forward signal: "upstream state changed, you may be
// dirty". It is the root of the InputSet* chain.
type Modified struct{}

func (Modified) Kinds() []Kind { return []Kind{KindModified} }

// Update is the backward signal: "produce a fresh value".
type Update struct{}

func (Update) Kinds() []Kind { return []Kind{KindUpdate} }

// InputSet is emitted on an input's internal sender whenever accept(Output)
// succeeds. Value carries the newly assigned data (any, since the signals
// package is payload-agnostic).
type InputSet struct {
	Value any
}

func (InputSet) Kinds() []Kind { return []Kind{KindInputSet, KindModified} }

// InputSetToSharedPointer is emitted whenever accept(directValue) succeeds.
type InputSetToSharedPointer struct {
	Value any
}

func (InputSetToSharedPointer) Kinds() []Kind {
	return []Kind{KindInputSetToSharedPointer, KindInputSet, KindModified}
}

// InputUnset is emitted by unset(), carrying the value that was dropped.
type InputUnset struct {
	OldValue any
}

func (InputUnset) Kinds() []Kind { return []Kind{KindInputUnset} }

// InputAdded is emitted by a multi-input whenever a new element is
// accepted, carrying the ordinal of the new input.
type InputAdded struct {
	Index int
}

func (InputAdded) Kinds() []Kind { return []Kind{KindInputAdded} }

// InputsCleared is emitted by a multi-input's clear().
type InputsCleared struct{}

func (InputsCleared) Kinds() []Kind { return []Kind{KindInputsCleared} }

// OutputPointerSet is emitted by an output whenever its value pointer is
// replaced via set(); reset() does not emit it.
type OutputPointerSet struct{}

func (OutputPointerSet) Kinds() []Kind { return []Kind{KindOutputPointerSet} }

// kindRank returns the index of kind within chain, or -1 if absent.
func kindRank(chain []Kind, kind Kind) int {
	for i, k := range chain {
		if k == kind {
			return i
		}
	}
	return -1
}
