package logger

import (
	"time"

	"go.uber.org/zap"
)

func String(key, value string) zap.Field {
	return zap.String(key, value)
}

func Int(key string, value int) zap.Field {
	return zap.Int(key, value)
}

func Duration(key string, value time.Duration) zap.Field {
	return zap.Duration(key, value)
}

func Bool(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}

func Any(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

// Domain fields, named consistently across services.

func ETag(etag string) zap.Field {
	return zap.String(FieldETag, etag)
}

func EnvVersion(v int64) zap.Field {
	return zap.Int64(FieldEnvVersion, v)
}

func CorrelationID(id string) zap.Field {
	return zap.String(FieldCorrelationID, id)
}
