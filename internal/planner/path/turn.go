package path

import (
	"encoding/json"
	"fmt"
	"math"
)

// TurnDirection is the rotation sense used to resolve a 180° reversal.
type TurnDirection int

const (
	Clockwise TurnDirection = iota
	CounterClockwise
)

func (t TurnDirection) String() string {
	switch t {
	case Clockwise:
		return "clockwise"
	case CounterClockwise:
		return "counterclockwise"
	}
	return fmt.Sprintf("TurnDirection(%d)", int(t))
}

// ParseTurnDirection accepts "clockwise"/"cw" and "counterclockwise"/"ccw".
func ParseTurnDirection(s string) (TurnDirection, error) {
	switch s {
	case "clockwise", "cw":
		return Clockwise, nil
	case "counterclockwise", "counter-clockwise", "ccw":
		return CounterClockwise, nil
	}
	return Clockwise, fmt.Errorf("unknown turn direction %q", s)
}

// MarshalJSON encodes the turn as its name.
func (t TurnDirection) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a turn name.
func (t *TurnDirection) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseTurnDirection(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Offset is the intermediate heading offset for this turn sense: clockwise
// rotates through -π/2, counter-clockwise through +π/2.
func (t TurnDirection) Offset() float64 {
	if t == CounterClockwise {
		return math.Pi / 2
	}
	return -math.Pi / 2
}

// TurnStack hands out pending turn decisions last-in-first-out. When it
// runs dry it answers with Default.
type TurnStack struct {
	turns   []TurnDirection
	Default TurnDirection
}

// NewTurnStack copies turns so popping does not mutate the caller's slice.
func NewTurnStack(turns []TurnDirection, def TurnDirection) *TurnStack {
	return &TurnStack{turns: append([]TurnDirection(nil), turns...), Default: def}
}

// Push adds a decision on top of the stack.
func (s *TurnStack) Push(t TurnDirection) { s.turns = append(s.turns, t) }

// Pop removes and returns the most recent decision, or Default.
func (s *TurnStack) Pop() TurnDirection {
	if len(s.turns) == 0 {
		return s.Default
	}
	t := s.turns[len(s.turns)-1]
	s.turns = s.turns[:len(s.turns)-1]
	return t
}

// Len returns the number of pending decisions.
func (s *TurnStack) Len() int { return len(s.turns) }
