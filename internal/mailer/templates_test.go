package mailer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/farellandr/admitpay/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderApproval(t *testing.T) {
	subject, html, err := mailer.RenderApproval(mailer.ApprovalEmail{
		Name:          "Asha <script>",
		TotalFee:      "20000",
		Discount:      "1000",
		PayableAmount: "19000",
		DirectPayURL:  "https://portal.example.com/api/pay?v=aaa111&type=direct",
		RazorPayURL:   "https://portal.example.com/api/pay?v=bbb222&type=razorpay",
		ExpiresAt:     time.Date(2026, 10, 22, 10, 0, 0, 0, time.UTC),
		SupportEmail:  "help@example.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, subject)
	assert.Contains(t, html, "v=aaa111")
	assert.Contains(t, html, "v=bbb222")
	assert.Contains(t, html, "19000")
	assert.Contains(t, html, "22 Oct 2026")
	assert.False(t, strings.Contains(html, "<script>"), "name must be escaped")
}

func TestRenderRejectionAndReceipt(t *testing.T) {
	_, html, err := mailer.RenderRejection(mailer.RejectionEmail{Name: "Ravi", SupportEmail: "help@example.com"})
	require.NoError(t, err)
	assert.Contains(t, html, "Ravi")

	_, html, err = mailer.RenderReceipt(mailer.ReceiptEmail{Name: "Ravi", Amount: "19000.00", PaymentID: "pay_7", PaidAt: time.Now()})
	require.NoError(t, err)
	assert.Contains(t, html, "pay_7")
}
