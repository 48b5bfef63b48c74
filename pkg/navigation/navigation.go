// Package navigation models the gallery screens as a finite-state machine.
//
// A State is always one of three shapes:
//   - Gallery: no selection
//   - Detail: a selected artifact
//   - Comparison: a selected artifact and a different compared artifact
//
// Transitions are validated; an illegal event leaves the state unchanged.
package navigation

import (
	"errors"
	"fmt"
)

type Screen int

const (
	Gallery Screen = iota
	Detail
	Comparison
)

func (s Screen) String() string {
	switch s {
	case Gallery:
		return "gallery"
	case Detail:
		return "detail"
	case Comparison:
		return "comparison"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

type Event int

const (
	Select Event = iota
	Compare
	Back
	Home
)

func (e Event) String() string {
	switch e {
	case Select:
		return "select"
	case Compare:
		return "compare"
	case Back:
		return "back"
	case Home:
		return "home"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned for events the current screen does not accept.
var ErrInvalidTransition = errors.New("invalid navigation transition")

// State is an immutable navigation snapshot.
type State struct {
	screen   Screen
	selected string
	compared string
}

// Start returns the initial gallery state.
func Start() State { return State{screen: Gallery} }

func (s State) Screen() Screen { return s.screen }
func (s State) Selected() string { return s.selected }
func (s State) Compared() string { return s.compared }

// Select opens the detail screen for id. Selecting from Detail replaces the
// selection, which is how "view similar" moves between artifacts.
func (s State) Select(id string) (State, error) {
	if !allowed(s.screen, Select) {
		return s, transitionError(s.screen, Select)
	}
	if id == "" {
		return s, fmt.Errorf("%w: select requires an artifact id", ErrInvalidTransition)
	}
	return State{screen: Detail, selected: id}, nil
}

// Compare opens the comparison screen against id.
func (s State) Compare(id string) (State, error) {
	if !allowed(s.screen, Compare) {
		return s, transitionError(s.screen, Compare)
	}
	if id == "" || id == s.selected {
		return s, fmt.Errorf("%w: cannot compare %q with %q", ErrInvalidTransition, s.selected, id)
	}
	return State{screen: Comparison, selected: s.selected, compared: id}, nil
}

// Back returns one level up: Comparison to Detail, Detail to Gallery.
func (s State) Back() (State, error) {
	switch s.screen {
	case Comparison:
		return State{screen: Detail, selected: s.selected}, nil
	case Detail:
		return Start(), nil
	default:
		return s, transitionError(s.screen, Back)
	}
}

// Home always returns to the gallery.
func (s State) Home() State { return Start() }

// Apply dispatches an event with an optional artifact id argument.
func (s State) Apply(e Event, id string) (State, error) {
	switch e {
	case Select:
		return s.Select(id)
	case Compare:
		return s.Compare(id)
	case Back:
		return s.Back()
	case Home:
		return s.Home(), nil
	default:
		return s, transitionError(s.screen, e)
	}
}

// Transition is one accepted (screen, event) pair and its target screen.
type Transition struct {
	From  Screen
	Event Event
	To    Screen
}

var transitions = []Transition{
	{Gallery, Select, Detail},
	{Gallery, Home, Gallery},
	{Detail, Select, Detail},
	{Detail, Compare, Comparison},
	{Detail, Back, Gallery},
	{Detail, Home, Gallery},
	{Comparison, Back, Detail},
	{Comparison, Home, Gallery},
}

// Reachable lists every accepted transition.
func Reachable() []Transition {
	return append([]Transition(nil), transitions...)
}

func allowed(from Screen, e Event) bool {
	for _, t := range transitions {
		if t.From == from && t.Event == e {
			return true
		}
	}
	return false
}

func transitionError(from Screen, e Event) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, e, from)
}
