package aggregate

import "github.com/opencourts/scandesk/internal/scan/domain/envelope"

// State captures aggregate core domain state for one scan envelope stream.
type State struct {
	Scan envelope.State
}

// AssertState narrows the loosely typed replay state used by the engine to a
// concrete aggregate state value.
func AssertState[T any](state any) (T, error) {
	var zero T
	if state == nil {
		return zero, nil
	}
	switch typed := state.(type) {
	case T:
		return typed, nil
	case *T:
		if typed == nil {
			return zero, nil
		}
		return *typed, nil
	default:
		return zero, errUnsupportedState
	}
}
