package services

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/farellandr/admitpay/internal/payment"
	"github.com/farellandr/admitpay/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T) (*TokenService, *clock) {
	t.Helper()
	store := testutil.NewStore(t)
	testutil.SeedApplication(t, store, 7, 20000, 0)
	clk := &clock{t: testNow}
	svc := NewTokenService(store, "")
	svc.now = clk.Now
	return svc, clk
}

func TestTokenService_Issue(t *testing.T) {
	svc, _ := newTokenService(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, 7, decimal.NewFromInt(19000), payment.RouteDirect, 0)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, 7, decimal.NewFromInt(19000), payment.RouteRazorpay, 0)
	require.NoError(t, err)

	raw, err := hex.DecodeString(first.Token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, "INR", first.Currency)
	assert.Equal(t, testNow.Add(7*24*time.Hour), first.ExpiresAt)
	assert.False(t, first.TokenUsed)
}

func TestTokenService_CustomValidity(t *testing.T) {
	svc, _ := newTokenService(t)

	token, err := svc.Issue(context.Background(), 7, decimal.NewFromInt(100), payment.RouteDirect, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(time.Hour), token.ExpiresAt)
}

func TestTokenService_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		svc, _ := newTokenService(t)
		issued, err := svc.Issue(ctx, 7, decimal.NewFromInt(19000), payment.RouteRazorpay, 0)
		require.NoError(t, err)

		got, err := svc.Validate(ctx, issued.Token, payment.RouteRazorpay)
		require.NoError(t, err)
		assert.Equal(t, uint(7), got.ApplicationID)
		assert.True(t, got.PayableAmount.Equal(decimal.NewFromInt(19000)))
	})

	t.Run("unknown", func(t *testing.T) {
		svc, _ := newTokenService(t)
		_, err := svc.Validate(ctx, "deadbeef", payment.RouteDirect)
		assert.ErrorIs(t, err, ErrTokenNotFound)

		_, err = svc.Validate(ctx, "", payment.RouteDirect)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("expired at the boundary", func(t *testing.T) {
		svc, clk := newTokenService(t)
		issued, err := svc.Issue(ctx, 7, decimal.NewFromInt(19000), payment.RouteDirect, time.Hour)
		require.NoError(t, err)

		clk.Advance(time.Hour - time.Second)
		_, err = svc.Validate(ctx, issued.Token, payment.RouteDirect)
		require.NoError(t, err)

		clk.Advance(time.Second)
		_, err = svc.Validate(ctx, issued.Token, payment.RouteDirect)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("used", func(t *testing.T) {
		svc, _ := newTokenService(t)
		issued, err := svc.Issue(ctx, 7, decimal.NewFromInt(19000), payment.RouteDirect, 0)
		require.NoError(t, err)
		_, err = svc.store.MarkTokensUsed(ctx, 7, testNow)
		require.NoError(t, err)

		_, err = svc.Validate(ctx, issued.Token, payment.RouteDirect)
		assert.ErrorIs(t, err, ErrTokenUsed)
	})

	t.Run("expired wins over used", func(t *testing.T) {
		svc, clk := newTokenService(t)
		issued, err := svc.Issue(ctx, 7, decimal.NewFromInt(19000), payment.RouteDirect, time.Hour)
		require.NoError(t, err)
		_, err = svc.store.MarkTokensUsed(ctx, 7, testNow)
		require.NoError(t, err)

		clk.Advance(2 * time.Hour)
		_, err = svc.Validate(ctx, issued.Token, payment.RouteDirect)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("route mismatch", func(t *testing.T) {
		svc, _ := newTokenService(t)
		issued, err := svc.Issue(ctx, 7, decimal.NewFromInt(19000), payment.RouteDirect, 0)
		require.NoError(t, err)

		_, err = svc.Validate(ctx, issued.Token, payment.RouteRazorpay)
		assert.ErrorIs(t, err, ErrRouteMismatch)
	})
}
