package helpers_test

import (
	"testing"

	"github.com/farellandr/admitpay/internal/helpers"
	"github.com/stretchr/testify/assert"
)

func TestVerifyHMACHex_RoundTrip(t *testing.T) {
	body := []byte(`{"event":"payment_link.paid","payload":{}}`)
	sig := helpers.SignHMACHex(body, "whsec")

	assert.Len(t, sig, 64)
	assert.True(t, helpers.VerifyHMACHex(body, sig, "whsec"))
	assert.False(t, helpers.VerifyHMACHex(body, sig, "other-secret"))
}

func TestVerifyHMACHex_AnyBitFlipRejected(t *testing.T) {
	body := []byte(`{"event":"payment.captured","amount":1900000}`)
	sig := helpers.SignHMACHex(body, "whsec")

	for i := range body {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte(nil), body...)
			mutated[i] ^= 1 << bit
			if helpers.VerifyHMACHex(mutated, sig, "whsec") {
				t.Fatalf("mutation at byte %d bit %d accepted", i, bit)
			}
		}
	}
}

func TestVerifyHMACHex_MalformedSignature(t *testing.T) {
	body := []byte("{}")
	assert.False(t, helpers.VerifyHMACHex(body, "", "whsec"))
	assert.False(t, helpers.VerifyHMACHex(body, "zz-not-hex", "whsec"))
	assert.False(t, helpers.VerifyHMACHex(body, helpers.SignHMACHex(body, "whsec"), ""))
}

func TestEqualSecret(t *testing.T) {
	assert.True(t, helpers.EqualSecret("tok", "tok"))
	assert.False(t, helpers.EqualSecret("tok", "tok2"))
	assert.False(t, helpers.EqualSecret("", ""))
}
