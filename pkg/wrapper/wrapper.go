package wrapper

import "net/http"

type JSONResult struct {
	Code    int         `json:"-"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	// ETag, when set, is sent back as the ETag response header.
	ETag string `json:"-"`
}

func ResponseSuccess(httpCode int, data interface{}) JSONResult {
	return JSONResult{
		Code:    httpCode,
		Success: true,
		Message: "Success",
		Data:    data,
	}
}

func ResponseFailed(httpCode int, message string, data interface{}) JSONResult {
	return JSONResult{
		Code:    httpCode,
		Success: false,
		Message: message,
		Data:    data,
	}
}

// ResponseNotModified answers a conditional request whose etag still matches.
func ResponseNotModified(etag string) JSONResult {
	return JSONResult{
		Code:    http.StatusNotModified,
		Success: true,
		Message: "Not Modified",
		ETag:    etag,
	}
}

// WithETag returns r carrying etag.
func (r JSONResult) WithETag(etag string) JSONResult {
	r.ETag = etag
	return r
}
