package gateway

import (
	"context"
	"fmt"
	"strconv"

	"github.com/razorpay/razorpay-go"
)

const ProviderRazorpay = "razorpay"

type paymentLinkCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayGateway struct {
	links paymentLinkCreator
}

func NewRazorpayGateway(client *razorpay.Client) *RazorpayGateway {
	return &RazorpayGateway{links: client.PaymentLink}
}

func (g *RazorpayGateway) Name() string {
	return ProviderRazorpay
}

func (g *RazorpayGateway) CreatePaymentLink(ctx context.Context, req LinkRequest) (*Link, error) {
	data := razorpayLinkPayload(req)

	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := g.links.Create(data, nil)
		done <- result{body, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkCreation, res.err)
	}

	id, _ := res.body["id"].(string)
	url, _ := res.body["short_url"].(string)
	status, _ := res.body["status"].(string)
	if id == "" || url == "" {
		return nil, fmt.Errorf("%w: response missing id or short_url", ErrLinkCreation)
	}
	return &Link{ID: id, URL: url, Status: status}, nil
}

func razorpayLinkPayload(req LinkRequest) map[string]interface{} {
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	data := map[string]interface{}{
		"amount":          ToMinorUnits(req.Amount),
		"currency":        currency,
		"accept_partial":  false,
		"reference_id":    req.Reference,
		"description":     req.Description,
		"reminder_enable": true,
		"notify": map[string]interface{}{
			"sms":   false,
			"email": false,
		},
		"notes": map[string]interface{}{
			"application_id": strconv.FormatUint(uint64(req.ApplicationID), 10),
			"payment_type":   string(req.Route),
		},
	}

	customer := map[string]interface{}{}
	if req.Customer.Name != "" {
		customer["name"] = req.Customer.Name
	}
	if req.Customer.Email != "" {
		customer["email"] = req.Customer.Email
	}
	if req.Customer.Phone != "" {
		customer["contact"] = req.Customer.Phone
	}
	if len(customer) > 0 {
		data["customer"] = customer
	}

	if req.CallbackURL != "" {
		data["callback_url"] = req.CallbackURL
		data["callback_method"] = "get"
	}
	if !req.ExpireBy.IsZero() {
		data["expire_by"] = req.ExpireBy.Unix()
	}
	return data
}
