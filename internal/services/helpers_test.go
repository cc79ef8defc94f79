package services

import (
	"context"
	"testing"
	"time"

	"github.com/farellandr/admitpay/internal/payment"
	"github.com/farellandr/admitpay/internal/repository"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var testLinks = Links{
	PublicBaseURL: "https://api.admissions.example.com",
	AppBaseURL:    "https://portal.admissions.example.com",
}

func setStatus(t *testing.T, store *repository.Store, id uint, statuses ...payment.Status) {
	t.Helper()
	for _, st := range statuses {
		_, _, err := advanceStatus(context.Background(), store, id, st)
		require.NoError(t, err)
	}
}
