package sim

import (
	"fmt"
	"reflect"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Component is a element that is being simulated.
type Component interface {
	Named
	Handler
	Hookable
}

// ComponentBase provides some functions that other component can use.
type ComponentBase struct {
	HookableBase

	name string
}

// NewComponentBase creates a new ComponentBase
func NewComponentBase(name string) *ComponentBase {
	c := new(ComponentBase)
	c.name = name

	return c
}

// Name returns the name of the BasicComponent
func (c *ComponentBase) Name() string {
	return c.name
}

// UnexpectedEventError is returned when a component is asked to handle an
// event type it does not know.
type UnexpectedEventError struct {
	Comp  string
	Event Event
}

func (e *UnexpectedEventError) Error() string {
	return fmt.Sprintf("component %s cannot handle event of type %s",
		e.Comp, reflect.TypeOf(e.Event))
}
