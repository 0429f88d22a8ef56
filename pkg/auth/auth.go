package authentication

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

type IBasicAuthService interface {
	// ValidateReader accepts reader or admin credentials.
	ValidateReader(username, password string) bool
	ValidateAdmin(username, password string) bool
	DecodeFromHeader(auth string) (string, string)
}

type BasicAuthTConfig struct {
	ReaderUsername string

	ReaderPassword string

	AdminUsername string

	AdminPassword string
}

type basicAuth struct {
	readerUsername string
	readerPassword string
	adminUsername  string
	adminPassword  string
}

func NewBasicAuthService(config *BasicAuthTConfig) IBasicAuthService {
	return &basicAuth{
		readerUsername: config.ReaderUsername,
		readerPassword: config.ReaderPassword,
		adminUsername:  config.AdminUsername,
		adminPassword:  config.AdminPassword,
	}
}

func (b *basicAuth) ValidateReader(username, password string) bool {
	if b.ValidateAdmin(username, password) {
		return true
	}
	return matches(b.readerUsername, b.readerPassword, username, password)
}

func (b *basicAuth) ValidateAdmin(username, password string) bool {
	return matches(b.adminUsername, b.adminPassword, username, password)
}

func (b *basicAuth) DecodeFromHeader(auth string) (string, string) {
	encoded := strings.TrimPrefix(auth, "Basic ")

	// Decode the Base64 string
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ""
	}

	// Split the decoded string into username and password
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return "", ""
	}

	return parts[0], parts[1]
}

// matches compares in constant time; empty configured usernames never match.
func matches(wantUser, wantPass, user, pass string) bool {
	if wantUser == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(wantUser), []byte(user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(wantPass), []byte(pass)) == 1
	return userOK && passOK
}
