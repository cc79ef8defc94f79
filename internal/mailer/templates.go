package mailer

import (
	"bytes"
	"html/template"
	"time"
)

type ApprovalEmail struct {
	Name          string
	Program       string
	TotalFee      string
	Discount      string
	PayableAmount string
	DirectPayURL  string
	RazorPayURL   string
	ExpiresAt     time.Time
	SupportEmail  string
}

type RejectionEmail struct {
	Name         string
	SupportEmail string
}

type ReceiptEmail struct {
	Name         string
	Amount       string
	PaymentID    string
	PaidAt       time.Time
	SupportEmail string
}

var approvalTmpl = template.Must(template.New("approval").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>Congratulations, {{.Name}}!</h2>
<p>Your application{{if .Program}} for <strong>{{.Program}}</strong>{{end}} has been approved.</p>
<table style="border-collapse:collapse">
<tr><td style="padding:4px 12px">Total course fee</td><td style="padding:4px 12px">&#8377; {{.TotalFee}}</td></tr>
<tr><td style="padding:4px 12px">Discount</td><td style="padding:4px 12px">&#8377; {{.Discount}}</td></tr>
<tr><td style="padding:4px 12px"><strong>Payable</strong></td><td style="padding:4px 12px"><strong>&#8377; {{.PayableAmount}}</strong></td></tr>
</table>
<p>Choose how you would like to pay:</p>
<p><a href="{{.DirectPayURL}}" style="background:#0b5ed7;color:#fff;padding:10px 18px;text-decoration:none;border-radius:4px">Pay directly</a></p>
<p><a href="{{.RazorPayURL}}" style="background:#198754;color:#fff;padding:10px 18px;text-decoration:none;border-radius:4px">Pay with Razorpay</a></p>
<p>These links are valid until {{.ExpiresAt.Format "02 Jan 2006 15:04 MST"}}.</p>
<p>Questions? Write to <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>.</p>
</body></html>`))

var rejectionTmpl = template.Must(template.New("rejection").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>Dear {{.Name}},</h2>
<p>Thank you for your interest. After careful review we are unable to approve your application at this time.</p>
<p>If you have questions, contact <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>.</p>
</body></html>`))

var receiptTmpl = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>Payment received</h2>
<p>Dear {{.Name}}, we have received your payment of <strong>&#8377; {{.Amount}}</strong>{{if .PaymentID}} (reference {{.PaymentID}}){{end}} on {{.PaidAt.Format "02 Jan 2006"}}.</p>
<p>Your receipt is attached. For help, contact <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>.</p>
</body></html>`))

func RenderApproval(data ApprovalEmail) (string, string, error) {
	html, err := render(approvalTmpl, data)
	return "Your application has been approved", html, err
}

func RenderRejection(data RejectionEmail) (string, string, error) {
	html, err := render(rejectionTmpl, data)
	return "Update on your application", html, err
}

func RenderReceipt(data ReceiptEmail) (string, string, error) {
	html, err := render(receiptTmpl, data)
	return "Payment confirmation", html, err
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
