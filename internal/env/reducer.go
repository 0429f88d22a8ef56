package env

// Reduce returns the snapshot that follows state once action is applied.
//
// A nil state is replaced by InitialState. Recognized actions always yield a
// new *State sharing the untouched field with the input; anything else,
// including a nil action, returns state itself.
func Reduce(state *State, action Action) *State {
	if state == nil {
		state = InitialState()
	}

	switch a := action.(type) {
	case SetTelegrafSystemInterval:
		next := *state
		next.TelegrafSystemInterval = a.TelegrafSystemInterval
		return &next
	case *SetTelegrafSystemInterval:
		if a == nil {
			return state
		}
		return Reduce(state, *a)
	case SetHostPageDisplayStatus:
		next := *state
		next.HostPageDisabled = a.HostPageDisabled
		return &next
	case *SetHostPageDisplayStatus:
		if a == nil {
			return state
		}
		return Reduce(state, *a)
	default:
		return state
	}
}

// Diff returns the actions that turn from into to, in a stable order.
// Identical snapshots produce no actions.
func Diff(from, to *State) []Action {
	if from == nil {
		from = InitialState()
	}
	if to == nil {
		return nil
	}

	var actions []Action
	if from.TelegrafSystemInterval != to.TelegrafSystemInterval {
		actions = append(actions, SetTelegrafInterval(to.TelegrafSystemInterval))
	}
	if from.HostPageDisabled != to.HostPageDisabled {
		actions = append(actions, SetHostPageDisplay(to.HostPageDisabled))
	}
	return actions
}
