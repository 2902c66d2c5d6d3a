package sim

// VTick is a point in simulated time, counted in ticks since the start of
// the simulation.
type VTick uint64

// An Event is something going to happen in the future.
type Event interface {
	// Return the tick at which the event should happen
	Time() VTick

	// Returns the handler that can should handle the event
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary event are
	// handled after all same-tick primary events are handled.
	IsSecondary() bool
}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	ID        string
	time      VTick
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase
func NewEventBase(t VTick, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler
	e.secondary = false

	return e
}

// MakeEventBase creates a new EventBase value, suitable for embedding.
func MakeEventBase(t VTick, handler Handler) EventBase {
	return *NewEventBase(t, handler)
}

// Time return the tick that the event is going to happen
func (e EventBase) Time() VTick {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
// The exception is the script loader, which schedules instruction events for
// the network before the simulation starts.
type Handler interface {
	Handle(e Event) error
}
