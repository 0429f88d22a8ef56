package dto

// EnvResponse is the mirrored environment and the local store position.
type EnvResponse struct {
	TelegrafSystemInterval string `json:"telegrafSystemInterval"`
	HostPageDisabled       bool   `json:"hostPageDisabled"`
	Version                int64  `json:"version"`
	ETag                   string `json:"etag"`
	RemoteETag             string `json:"remote_etag,omitempty"`
}
