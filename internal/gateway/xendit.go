package gateway

import (
	"context"
	"fmt"

	"github.com/xendit/xendit-go/v6"
	"github.com/xendit/xendit-go/v6/invoice"
)

const ProviderXendit = "xendit"

type invoiceCreator func(ctx context.Context, req invoice.CreateInvoiceRequest) (*Link, error)

// XenditGateway serves a route through hosted Xendit invoices.
type XenditGateway struct {
	create invoiceCreator
}

func NewXenditGateway(client *xendit.APIClient) *XenditGateway {
	return &XenditGateway{
		create: func(ctx context.Context, req invoice.CreateInvoiceRequest) (*Link, error) {
			resp, _, sdkErr := client.InvoiceApi.CreateInvoice(ctx).
				CreateInvoiceRequest(req).
				Execute()
			if sdkErr != nil {
				return nil, fmt.Errorf("%w: %s", ErrLinkCreation, sdkErr.Error())
			}
			return &Link{
				ID:     resp.GetId(),
				URL:    resp.GetInvoiceUrl(),
				Status: string(resp.GetStatus()),
			}, nil
		},
	}
}

func (g *XenditGateway) Name() string {
	return ProviderXendit
}

func (g *XenditGateway) CreatePaymentLink(ctx context.Context, req LinkRequest) (*Link, error) {
	link, err := g.create(ctx, xenditInvoiceRequest(req))
	if err != nil {
		return nil, err
	}
	if link.ID == "" || link.URL == "" {
		return nil, fmt.Errorf("%w: invoice missing id or url", ErrLinkCreation)
	}
	return link, nil
}

func xenditInvoiceRequest(req LinkRequest) invoice.CreateInvoiceRequest {
	inv := invoice.NewCreateInvoiceRequest(req.Reference, req.Amount.InexactFloat64())
	if req.Description != "" {
		inv.SetDescription(req.Description)
	}
	if req.Customer.Email != "" {
		inv.SetPayerEmail(req.Customer.Email)
	}
	if req.Currency != "" {
		inv.SetCurrency(req.Currency)
	}
	if req.CallbackURL != "" {
		inv.SetSuccessRedirectUrl(req.CallbackURL)
	}
	if req.FailureURL != "" {
		inv.SetFailureRedirectUrl(req.FailureURL)
	}
	return *inv
}
