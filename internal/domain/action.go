package domain

import "fmt"

// Action trading action resolved by the decision engine.
type Action int

// ActionHold is the zero value: an uninitialized Action reads as the no-op
// action, never as an order side.
const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

const (
	actionStringBuy  = "buy"
	actionStringSell = "sell"
	actionStringHold = "hold"
)

// ParseAction converts the wire string to a typed Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case actionStringBuy:
		return ActionBuy, nil
	case actionStringSell:
		return ActionSell, nil
	case actionStringHold:
		return ActionHold, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionBuy:
		return actionStringBuy
	case ActionSell:
		return actionStringSell
	case ActionHold:
		return actionStringHold
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the action as its string form.
func (a Action) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes the action from its string form.
func (a *Action) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("action must be a JSON string, got %s", string(data))
	}
	parsed, err := ParseAction(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
