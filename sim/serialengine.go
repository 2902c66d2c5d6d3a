package sim

import (
	"log"
	"reflect"
	"sync"
	"sync/atomic"
)

// A SerialEngine runs events one at a time in tick order. Within a tick,
// primary events run before secondary ones and each queue keeps scheduling
// order.
type SerialEngine struct {
	HookableBase

	now       atomic.Uint64
	primary   EventQueue
	secondary EventQueue

	// gate is held while an event runs and while the engine is paused.
	gate     sync.Mutex
	pausedMu sync.Mutex
	paused   bool

	running     sync.Mutex
	endHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{
		primary:   NewEventQueue(),
		secondary: NewEventQueue(),
	}
}

// Schedule queues an event. Events cannot be scheduled before the current
// tick.
func (e *SerialEngine) Schedule(evt Event) {
	if evt.Time() < e.CurrentTime() {
		log.Panicf("scheduling %s at tick %d, before tick %d",
			reflect.TypeOf(evt), evt.Time(), e.CurrentTime())
	}

	if evt.IsSecondary() {
		e.secondary.Push(evt)
		return
	}

	e.primary.Push(evt)
}

// Run handles events until none is left. The first handler error stops the
// run and is returned.
func (e *SerialEngine) Run() error {
	e.running.Lock()
	defer e.running.Unlock()

	for {
		handled, err := e.step()
		if err != nil {
			return err
		}

		if !handled {
			return nil
		}
	}
}

func (e *SerialEngine) step() (bool, error) {
	e.gate.Lock()
	defer e.gate.Unlock()

	evt := e.pop()
	if evt == nil {
		return false, nil
	}

	e.now.Store(uint64(evt.Time()))

	ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
	e.InvokeHook(ctx)

	err := evt.Handler().Handle(evt)

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	return true, err
}

// pop removes the next event, or returns nil when both queues are empty.
func (e *SerialEngine) pop() Event {
	switch {
	case e.primary.Len() == 0 && e.secondary.Len() == 0:
		return nil
	case e.secondary.Len() == 0:
		return e.primary.Pop()
	case e.primary.Len() == 0:
		return e.secondary.Pop()
	case e.primary.Peek().Time() <= e.secondary.Peek().Time():
		return e.primary.Pop()
	default:
		return e.secondary.Pop()
	}
}

// Pause blocks the engine after the event being handled. Pausing twice has
// no effect.
func (e *SerialEngine) Pause() {
	e.pausedMu.Lock()
	defer e.pausedMu.Unlock()

	if !e.paused {
		e.gate.Lock()
		e.paused = true
	}
}

// Continue lets a paused engine handle events again.
func (e *SerialEngine) Continue() {
	e.pausedMu.Lock()
	defer e.pausedMu.Unlock()

	if e.paused {
		e.paused = false
		e.gate.Unlock()
	}
}

// CurrentTime returns the tick of the event being handled. It is safe to call
// from other goroutines.
func (e *SerialEngine) CurrentTime() VTick {
	return VTick(e.now.Load())
}

// RegisterSimulationEndHandler registers a handler to be called by Finished.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.endHandlers = append(e.endHandlers, handler)
}

// Finished calls the registered end handlers with the last tick.
func (e *SerialEngine) Finished() {
	now := e.CurrentTime()
	for _, h := range e.endHandlers {
		h.Handle(now)
	}
}
