package helpers_test

import (
	"testing"
	"time"

	"github.com/farellandr/admitpay/internal/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentReference(t *testing.T) {
	at := time.Unix(1718000000, 0)
	ref := helpers.BuildPaymentReference(42, at)
	assert.Equal(t, "APP-42-1718000000", ref)

	id, err := helpers.ExtractApplicationID(ref)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestExtractApplicationID_Invalid(t *testing.T) {
	for _, ref := range []string{"", "APP-42", "INV-42-1", "APP-x-1", "APP-0-1"} {
		_, err := helpers.ExtractApplicationID(ref)
		assert.Error(t, err, ref)
	}
}

func TestEncodeQRPNG(t *testing.T) {
	png, err := helpers.EncodeQRPNG("https://portal.example.com/api/pay?v=abc&type=direct", 256)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
