package authentication

import (
	"encoding/base64"
	"testing"
)

func newTestService() IBasicAuthService {
	return NewBasicAuthService(&BasicAuthTConfig{
		ReaderUsername: "reader",
		ReaderPassword: "r-pass",
		AdminUsername:  "admin",
		AdminPassword:  "a-pass",
	})
}

func TestValidate(t *testing.T) {
	svc := newTestService()

	cases := []struct {
		user, pass    string
		reader, admin bool
	}{
		{"reader", "r-pass", true, false},
		{"admin", "a-pass", true, true},
		{"reader", "wrong", false, false},
		{"", "", false, false},
	}
	for _, c := range cases {
		if got := svc.ValidateReader(c.user, c.pass); got != c.reader {
			t.Errorf("ValidateReader(%q): expected %v, got %v", c.user, c.reader, got)
		}
		if got := svc.ValidateAdmin(c.user, c.pass); got != c.admin {
			t.Errorf("ValidateAdmin(%q): expected %v, got %v", c.user, c.admin, got)
		}
	}
}

func TestDecodeFromHeader(t *testing.T) {
	svc := newTestService()

	header := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:a:b"))
	user, pass := svc.DecodeFromHeader(header)
	if user != "admin" || pass != "a:b" {
		t.Fatalf("unexpected decode result %q/%q", user, pass)
	}

	user, pass = svc.DecodeFromHeader("Basic !!!")
	if user != "" || pass != "" {
		t.Fatalf("expected empty credentials for invalid base64")
	}
}
