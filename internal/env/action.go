package env

// ActionType is the discriminant carried by every action.
type ActionType string

const (
	ActionSetTelegrafSystemInterval ActionType = "SET_TELEGRAF_SYSTEM_INTERVAL"
	ActionSetHostPageDisplayStatus  ActionType = "SET_HOST_PAGE_DISPLAY_STATUS"
)

// Action describes a change to the environment snapshot.
type Action interface {
	Type() ActionType
}

// SetTelegrafSystemInterval replaces the telegraf system interval.
type SetTelegrafSystemInterval struct {
	TelegrafSystemInterval string `json:"telegrafSystemInterval"`
}

func (SetTelegrafSystemInterval) Type() ActionType { return ActionSetTelegrafSystemInterval }

// SetHostPageDisplayStatus toggles whether the host page is disabled.
type SetHostPageDisplayStatus struct {
	HostPageDisabled bool `json:"hostPageDisabled"`
}

func (SetHostPageDisplayStatus) Type() ActionType { return ActionSetHostPageDisplayStatus }

// Unrecognized carries any action this package does not handle. The raw
// payload is kept so it can be forwarded untouched.
type Unrecognized struct {
	Tag     ActionType
	Payload []byte
}

func (u Unrecognized) Type() ActionType { return u.Tag }

// SetTelegrafInterval builds a SetTelegrafSystemInterval action.
func SetTelegrafInterval(interval string) Action {
	return SetTelegrafSystemInterval{TelegrafSystemInterval: interval}
}

// SetHostPageDisplay builds a SetHostPageDisplayStatus action.
func SetHostPageDisplay(disabled bool) Action {
	return SetHostPageDisplayStatus{HostPageDisabled: disabled}
}

// Known reports whether t is handled by Reduce.
func Known(t ActionType) bool {
	switch t {
	case ActionSetTelegrafSystemInterval, ActionSetHostPageDisplayStatus:
		return true
	default:
		return false
	}
}
