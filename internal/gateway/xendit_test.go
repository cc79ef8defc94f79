package gateway

import (
	"context"
	"testing"

	"github.com/farellandr/admitpay/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xendit/xendit-go/v6/invoice"
)

func TestXenditGateway_CreatePaymentLink(t *testing.T) {
	var got invoice.CreateInvoiceRequest
	gw := &XenditGateway{create: func(_ context.Context, req invoice.CreateInvoiceRequest) (*Link, error) {
		got = req
		return &Link{ID: "inv_1", URL: "https://checkout.xendit.co/web/inv_1", Status: "PENDING"}, nil
	}}

	link, err := gw.CreatePaymentLink(context.Background(), linkRequest())
	require.NoError(t, err)
	assert.Equal(t, "inv_1", link.ID)
	assert.Equal(t, "APP-42-1718000000", got.ExternalId)
	assert.Equal(t, float64(19000), got.Amount)
	assert.Equal(t, "asha@example.com", got.GetPayerEmail())
}

func TestXenditGateway_EmptyInvoice(t *testing.T) {
	gw := &XenditGateway{create: func(context.Context, invoice.CreateInvoiceRequest) (*Link, error) {
		return &Link{}, nil
	}}
	_, err := gw.CreatePaymentLink(context.Background(), linkRequest())
	assert.ErrorIs(t, err, ErrLinkCreation)
}

func TestParseXenditCallback(t *testing.T) {
	body := `{"id":"inv_1","external_id":"APP-42-1718000000","status":"PAID","amount":19000,"paid_amount":19000,"currency":"IDR","payment_method":"BANK_TRANSFER","payment_channel":"BCA"}`
	n, err := ParseXenditCallback([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "xendit:inv_1:PAID", n.EventID)
	assert.Equal(t, "invoice.paid", n.Event)
	assert.Equal(t, payment.StatusPaid, n.Outcome)
	assert.Equal(t, uint(42), n.ApplicationID)
	assert.Equal(t, int64(1900000), n.Amount)
	assert.Equal(t, "bca", n.Method)
}

func TestParseXenditCallback_Expired(t *testing.T) {
	n, err := ParseXenditCallback([]byte(`{"id":"inv_2","external_id":"bogus","status":"EXPIRED","amount":10}`))
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCancelled, n.Outcome)
	assert.Zero(t, n.ApplicationID)

	_, err = ParseXenditCallback([]byte(`{"status":"PAID"}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}
