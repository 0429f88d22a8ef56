// Package env holds the environment settings snapshot shared between the
// controller, its agents and the UI, together with the reducer that derives
// the next snapshot from an action.
package env

// DefaultTelegrafSystemInterval is the interval a fresh environment starts with.
const DefaultTelegrafSystemInterval = "1m"

// State is an immutable-by-convention snapshot of the environment settings.
// Callers must not modify a State they did not construct; Reduce returns a
// new value for every recognized transition.
type State struct {
	TelegrafSystemInterval string `json:"telegrafSystemInterval"`
	HostPageDisabled       bool   `json:"hostPageDisabled"`
}

// InitialState returns the snapshot used when no prior state exists.
func InitialState() *State {
	return &State{
		TelegrafSystemInterval: DefaultTelegrafSystemInterval,
		HostPageDisabled:       false,
	}
}

// Equal reports whether both snapshots carry the same values.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	return *s == *other
}
