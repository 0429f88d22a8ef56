package env

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction_Recognized(t *testing.T) {
	a, err := DecodeAction([]byte(`{"type":"SET_TELEGRAF_SYSTEM_INTERVAL","payload":{"telegrafSystemInterval":"5m"}}`))
	require.NoError(t, err)
	assert.Equal(t, SetTelegrafSystemInterval{TelegrafSystemInterval: "5m"}, a)

	a, err = DecodeAction([]byte(`{"type":"SET_HOST_PAGE_DISPLAY_STATUS","payload":{"hostPageDisabled":true}}`))
	require.NoError(t, err)
	assert.Equal(t, SetHostPageDisplayStatus{HostPageDisabled: true}, a)
}

func TestDecodeAction_EmptyIntervalAccepted(t *testing.T) {
	a, err := DecodeAction([]byte(`{"type":"SET_TELEGRAF_SYSTEM_INTERVAL","payload":{"telegrafSystemInterval":""}}`))
	require.NoError(t, err)
	assert.Equal(t, SetTelegrafSystemInterval{}, a)
}

func TestDecodeAction_Unrecognized(t *testing.T) {
	a, err := DecodeAction([]byte(`{"type":"SET_AUTOREFRESH","payload":{"milliseconds":5000}}`))
	require.NoError(t, err)

	u, ok := a.(Unrecognized)
	require.True(t, ok)
	assert.Equal(t, ActionType("SET_AUTOREFRESH"), u.Type())
	assert.JSONEq(t, `{"milliseconds":5000}`, string(u.Payload))
	assert.False(t, Known(u.Type()))
}

func TestDecodeAction_MissingPayload(t *testing.T) {
	cases := []string{
		`{"type":"SET_TELEGRAF_SYSTEM_INTERVAL"}`,
		`{"type":"SET_TELEGRAF_SYSTEM_INTERVAL","payload":null}`,
		`{"type":"SET_TELEGRAF_SYSTEM_INTERVAL","payload":{}}`,
		`{"type":"SET_HOST_PAGE_DISPLAY_STATUS","payload":{"telegrafSystemInterval":"1m"}}`,
	}
	for _, c := range cases {
		_, err := DecodeAction([]byte(c))
		assert.True(t, errors.Is(err, ErrMissingPayload), "input %s: got %v", c, err)
	}
}

func TestDecodeAction_Malformed(t *testing.T) {
	_, err := DecodeAction([]byte(`{"payload":{}}`))
	assert.ErrorIs(t, err, ErrMissingType)

	_, err = DecodeAction([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeAction([]byte(`{"type":"SET_HOST_PAGE_DISPLAY_STATUS","payload":{"hostPageDisabled":"yes"}}`))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingPayload))
}

func TestEncodeAction(t *testing.T) {
	data, err := EncodeAction(SetTelegrafInterval("10s"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"SET_TELEGRAF_SYSTEM_INTERVAL","payload":{"telegrafSystemInterval":"10s"}}`, string(data))

	data, err = EncodeAction(Unrecognized{Tag: "NOOP"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"NOOP"}`, string(data))

	_, err = EncodeAction(nil)
	assert.ErrorIs(t, err, ErrMissingType)
}

func TestEncodeDecode_HostPage(t *testing.T) {
	data, err := EncodeAction(SetHostPageDisplay(false))
	require.NoError(t, err)

	a, err := DecodeAction(data)
	require.NoError(t, err)
	assert.Equal(t, SetHostPageDisplayStatus{HostPageDisabled: false}, a)
}
