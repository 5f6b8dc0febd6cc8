package signals

import "sync"

// Sender is a registry of slots. Connecting a Sender to a Receiver wires
// every one of the sender's slots to that receiver, so any subsequent
// Emit on any of those slots reaches the receiver's callbacks.
type Sender struct {
	mu    sync.Mutex
	slots []slotBase
	conns []*Receiver
}

// NewSender creates an empty Sender.
func NewSender() *Sender {
	return &Sender{}
}

// RegisterSlot adds slot to this sender's registry and, if the sender is
// already connected to any receivers, immediately wires the new slot to
// them too.
func RegisterSlot[S Signal](s *Sender, slot *Slot[S]) {
	s.mu.Lock()
	s.slots = append(s.slots, slot)
	conns := make([]*Receiver, len(s.conns))
	copy(conns, s.conns)
	s.mu.Unlock()

	for _, r := range conns {
		slot.connectReceiver(r)
	}
}

// RegisterSlots adds every slot currently held by group to this sender's
// wiring; slots added to group later are not included. Because Slots grows
// dynamically, callers that add elements after Connect must re-wire new
// slots themselves (the multi-input port does this on each accept call).
func RegisterSlots[S Signal](s *Sender, group *Slots[S]) {
	n := group.Len()
	for i := 0; i < n; i++ {
		RegisterSlot(s, group.At(i))
	}
}

// Connect wires every slot currently registered with s to r.
func (s *Sender) Connect(r *Receiver) {
	s.mu.Lock()
	slots := make([]slotBase, len(s.slots))
	copy(slots, s.slots)
	s.conns = append(s.conns, r)
	s.mu.Unlock()

	for _, slot := range slots {
		slot.connectReceiver(r)
	}
}

// Disconnect tears down the wiring established by a prior Connect.
func (s *Sender) Disconnect(r *Receiver) {
	s.mu.Lock()
	slots := make([]slotBase, len(s.slots))
	copy(slots, s.slots)
	for i, existing := range s.conns {
		if existing == r {
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	for _, slot := range slots {
		slot.disconnectReceiver(r)
	}
}
