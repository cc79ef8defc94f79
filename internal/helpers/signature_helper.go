package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignHMACHex returns the lowercase hex HMAC-SHA256 of body under secret.
func SignHMACHex(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMACHex checks a hex signature against the raw body in constant time.
func VerifyHMACHex(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	provided, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), provided)
}

// EqualSecret compares two shared secrets in constant time.
func EqualSecret(provided, expected string) bool {
	if provided == "" || expected == "" {
		return false
	}
	return hmac.Equal([]byte(provided), []byte(expected))
}
