package env

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingPayload is returned when a recognized action arrives without
	// the payload field it targets.
	ErrMissingPayload = errors.New("env: action payload missing")
	// ErrMissingType is returned when an encoded action carries no type tag.
	ErrMissingType = errors.New("env: action type missing")
)

// Envelope is the wire form of an action: {"type": ..., "payload": {...}}.
type Envelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type intervalPayload struct {
	TelegrafSystemInterval *string `json:"telegrafSystemInterval"`
}

type hostPagePayload struct {
	HostPageDisabled *bool `json:"hostPageDisabled"`
}

// DecodeAction parses a wire action. Unknown types decode to Unrecognized.
// Payload values are taken as given; only their presence is checked.
func DecodeAction(data []byte) (Action, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	return e.Action()
}

// Action converts the envelope into a typed action.
func (e Envelope) Action() (Action, error) {
	if e.Type == "" {
		return nil, ErrMissingType
	}

	payload := bytes.TrimSpace(e.Payload)
	hasPayload := len(payload) > 0 && !bytes.Equal(payload, []byte("null"))

	switch e.Type {
	case ActionSetTelegrafSystemInterval:
		if !hasPayload {
			return nil, fmt.Errorf("%s: %w", e.Type, ErrMissingPayload)
		}
		var p intervalPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%s payload: %w", e.Type, err)
		}
		if p.TelegrafSystemInterval == nil {
			return nil, fmt.Errorf("%s: telegrafSystemInterval: %w", e.Type, ErrMissingPayload)
		}
		return SetTelegrafSystemInterval{TelegrafSystemInterval: *p.TelegrafSystemInterval}, nil
	case ActionSetHostPageDisplayStatus:
		if !hasPayload {
			return nil, fmt.Errorf("%s: %w", e.Type, ErrMissingPayload)
		}
		var p hostPagePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%s payload: %w", e.Type, err)
		}
		if p.HostPageDisabled == nil {
			return nil, fmt.Errorf("%s: hostPageDisabled: %w", e.Type, ErrMissingPayload)
		}
		return SetHostPageDisplayStatus{HostPageDisabled: *p.HostPageDisabled}, nil
	default:
		var raw []byte
		if hasPayload {
			raw = append(raw, payload...)
		}
		return Unrecognized{Tag: e.Type, Payload: raw}, nil
	}
}

// EncodeAction renders an action in its wire form.
func EncodeAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, ErrMissingType
	}

	var payload []byte
	var err error
	switch v := a.(type) {
	case Unrecognized:
		payload = v.Payload
	default:
		payload, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", a.Type(), err)
		}
	}

	return json.Marshal(Envelope{Type: a.Type(), Payload: payload})
}
