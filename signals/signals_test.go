package signals_test

import (
	"runtime"
	"testing"

	"github.com/flowcore/pipeline/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotDispatchesToConnectedReceiver(t *testing.T) {
	sender := signals.NewSender()
	slot := signals.NewSlot[signals.Update]()
	signals.RegisterSlot(sender, slot)

	receiver := signals.NewReceiver()
	sender.Connect(receiver)

	calls := 0
	cb := signals.NewStaticCallback(signals.KindUpdate, signals.Transparent, func(signals.Signal) {
		calls++
	})
	receiver.RegisterCallback(cb)

	slot.Emit(signals.Update{})
	assert.Equal(t, 1, calls)
}

func TestExclusiveInvocationFiresOnlyMostSpecific(t *testing.T) {
	sender := signals.NewSender()
	slot := signals.NewSlot[signals.InputSet]()
	signals.RegisterSlot(sender, slot)

	receiver := signals.NewReceiver()
	sender.Connect(receiver)

	var fired []string
	receiver.RegisterCallback(signals.NewStaticCallback(signals.KindModified, signals.Exclusive, func(signals.Signal) {
		fired = append(fired, "modified")
	}))
	receiver.RegisterCallback(signals.NewStaticCallback(signals.KindInputSet, signals.Exclusive, func(signals.Signal) {
		fired = append(fired, "inputSet")
	}))

	slot.Emit(signals.InputSet{Value: 42})

	require.Len(t, fired, 1)
	assert.Equal(t, "inputSet", fired[0])
}

func TestTransparentInvocationFiresAllMatches(t *testing.T) {
	sender := signals.NewSender()
	slot := signals.NewSlot[signals.InputSet]()
	signals.RegisterSlot(sender, slot)

	receiver := signals.NewReceiver()
	sender.Connect(receiver)

	var fired []string
	receiver.RegisterCallback(signals.NewStaticCallback(signals.KindModified, signals.Transparent, func(signals.Signal) {
		fired = append(fired, "modified")
	}))
	receiver.RegisterCallback(signals.NewStaticCallback(signals.KindInputSet, signals.Transparent, func(signals.Signal) {
		fired = append(fired, "inputSet")
	}))

	slot.Emit(signals.InputSet{Value: 42})

	assert.ElementsMatch(t, []string{"modified", "inputSet"}, fired)
}

func TestWeakTrackedCallbackDropsWhenOwnerDies(t *testing.T) {
	sender := signals.NewSender()
	slot := signals.NewSlot[signals.Update]()
	signals.RegisterSlot(sender, slot)

	receiver := signals.NewReceiver()
	sender.Connect(receiver)

	calls := 0
	func() {
		// A tiny pointer-free owner could share an allocation slot with a
		// live object and never be reported dead, so use a larger one.
		owner := new([4]int)
		cb := signals.NewCallback(signals.KindUpdate, owner, signals.Weak, signals.Transparent, func(signals.Signal) {
			calls++
		})
		receiver.RegisterCallback(cb)
		slot.Emit(signals.Update{})
	}()
	assert.Equal(t, 1, calls)

	// owner above is now unreachable; force a collection cycle and emit
	// again. The callback must not fire (and must not panic).
	for i := 0; i < 3; i++ {
		runtime.GC()
	}
	slot.Emit(signals.Update{})
	assert.Equal(t, 1, calls, "weak-tracked callback should not fire after its owner is collected")
}

func TestSharedTrackedCallbackAlwaysFires(t *testing.T) {
	sender := signals.NewSender()
	slot := signals.NewSlot[signals.Update]()
	signals.RegisterSlot(sender, slot)

	receiver := signals.NewReceiver()
	sender.Connect(receiver)

	calls := 0
	owner := new(int)
	cb := signals.NewCallback(signals.KindUpdate, owner, signals.Shared, signals.Transparent, func(signals.Signal) {
		calls++
	})
	receiver.RegisterCallback(cb)
	owner = nil // the callback itself must still keep the original alive
	_ = owner

	slot.Emit(signals.Update{})
	assert.Equal(t, 1, calls)
}

func TestDisconnectStopsDelivery(t *testing.T) {
	sender := signals.NewSender()
	slot := signals.NewSlot[signals.Update]()
	signals.RegisterSlot(sender, slot)

	receiver := signals.NewReceiver()
	sender.Connect(receiver)

	calls := 0
	receiver.RegisterCallback(signals.NewStaticCallback(signals.KindUpdate, signals.Transparent, func(signals.Signal) {
		calls++
	}))

	slot.Emit(signals.Update{})
	sender.Disconnect(receiver)
	slot.Emit(signals.Update{})

	assert.Equal(t, 1, calls)
}

func TestSlotsGroupIndexing(t *testing.T) {
	group := signals.NewSlots[signals.Update]()
	i0 := group.AddSlot()
	i1 := group.AddSlot()
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Equal(t, 2, group.Len())

	group.Clear()
	assert.Equal(t, 0, group.Len())
}
