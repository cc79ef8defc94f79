package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/farellandr/admitpay/internal/models"
	"github.com/shopspring/decimal"
)

var ErrFeesMissing = errors.New("total course fee is not set")

var (
	totalFeeKeys = []string{"total_course_fees", "totalCourseFees", "course_fee", "courseFees", "total_fees", "total_fee"}
	discountKeys = []string{"discount", "discount_amount", "discountAmount", "scholarship"}
)

type Fees struct {
	Total    decimal.Decimal
	Discount decimal.Decimal
	Payable  decimal.Decimal
}

// ComputeFees reads fee figures from admin_filled, then final_fee_payment,
// then application_details. Payable never drops below zero.
func ComputeFees(app *models.Application) (Fees, error) {
	docs := []models.JSONMap{app.AdminFilled, app.FinalFeePayment, app.ApplicationDetails}

	total, ok := lookupAmount(docs, totalFeeKeys)
	if !ok || !total.IsPositive() {
		return Fees{}, ErrFeesMissing
	}
	discount, ok := lookupAmount(docs, discountKeys)
	if !ok || discount.IsNegative() {
		discount = decimal.Zero
	}

	payable := total.Sub(discount)
	if payable.IsNegative() {
		payable = decimal.Zero
	}
	return Fees{Total: total, Discount: discount, Payable: payable}, nil
}

func lookupAmount(docs []models.JSONMap, keys []string) (decimal.Decimal, bool) {
	for _, doc := range docs {
		for _, key := range keys {
			raw, present := doc[key]
			if !present {
				continue
			}
			if amount, ok := parseAmount(raw); ok {
				return amount, true
			}
		}
	}
	return decimal.Zero, false
}

func parseAmount(v interface{}) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromInt(int64(n)), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case decimal.Decimal:
		return n, true
	case string:
		cleaned := strings.NewReplacer(",", "", "₹", "", "INR", "", "Rs.", "", " ", "").Replace(strings.TrimSpace(n))
		if cleaned == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(cleaned)
		return d, err == nil
	}
	return decimal.Zero, false
}
