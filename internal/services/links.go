package services

import (
	"net/url"
	"strings"

	"github.com/farellandr/admitpay/internal/payment"
)

// Links builds the absolute URLs handed to applicants and gateways.
type Links struct {
	PublicBaseURL string
	AppBaseURL    string
}

func (l Links) PayURL(token string, route payment.Route) string {
	q := url.Values{}
	q.Set("v", token)
	q.Set("type", string(route))
	return strings.TrimRight(l.PublicBaseURL, "/") + "/api/pay?" + q.Encode()
}

func (l Links) SuccessURL(status string) string {
	u := strings.TrimRight(l.AppBaseURL, "/") + "/payment/success"
	if status == "" {
		return u
	}
	return u + "?" + url.Values{"status": {status}}.Encode()
}

func (l Links) ErrorURL(reason string) string {
	return strings.TrimRight(l.AppBaseURL, "/") + "/payment/error?" + url.Values{"reason": {reason}}.Encode()
}
