package pipeline

import "sync"

// Value is the type every input/output payload must satisfy: a payload
// that carries its own reader/writer mutex, used to serialize reads
// against a node's writes during recomputation. Concrete types either
// embed valueBase directly or, for plain user types, get boxed in Wrap.
type Value interface {
	Mutex() *sync.RWMutex
}

// valueBase gives a struct a Value's mutex by embedding. Payload types
// that want to avoid the Wrap boxing overhead embed this directly.
type valueBase struct {
	mu sync.RWMutex
}

// Mutex returns the reader/writer mutex guarding this value.
func (v *valueBase) Mutex() *sync.RWMutex { return &v.mu }

// Wrap transparently boxes an arbitrary payload type T that does not
// itself implement Value, giving it a mutex. Input/Output handles for
// plain T unbox it automatically so consumer code looks the same whether
// T derives from Value or not (see WrappedInput/WrappedOutput).
type Wrap[T any] struct {
	valueBase
	Payload T
}

// NewWrap boxes payload.
func NewWrap[T any](payload T) *Wrap[T] {
	return &Wrap[T]{Payload: payload}
}
