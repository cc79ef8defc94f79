package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/payment"
	"github.com/farellandr/admitpay/internal/repository"
	"github.com/farellandr/admitpay/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApprovalService(t *testing.T, mail *fakeMailer) (*ApprovalService, *repository.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	tokens := NewTokenService(store, "INR")
	tokens.now = func() time.Time { return testNow }
	svc := NewApprovalService(store, tokens, mail, ApprovalConfig{
		Links:        testLinks,
		SupportEmail: "admissions@example.com",
	}, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func TestApprovalService_Approve(t *testing.T) {
	mail := &fakeMailer{}
	svc, store := newApprovalService(t, mail)
	ctx := context.Background()
	testutil.SeedApplication(t, store, 42, 20000, 1000)

	result, err := svc.Decide(ctx, 42, models.ApprovalApproved, "admin@example.com")
	require.NoError(t, err)

	assert.True(t, result.EmailSent)
	assert.True(t, result.Fees.Payable.Equal(decimal.NewFromInt(19000)))
	require.NotNil(t, result.DirectToken)
	require.NotNil(t, result.GatewayToken)
	assert.NotEqual(t, result.DirectToken.Token, result.GatewayToken.Token)
	assert.Equal(t, payment.RouteDirect, result.DirectToken.PaymentType)
	assert.Equal(t, payment.RouteRazorpay, result.GatewayToken.PaymentType)
	assert.Contains(t, result.DirectPayURL, "https://api.admissions.example.com/api/pay?")
	assert.Contains(t, result.DirectPayURL, "type=direct")
	assert.Contains(t, result.GatewayPayURL, "type=razorpay")

	tokens, err := store.ListTokens(ctx, 42)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	for _, tok := range tokens {
		assert.True(t, tok.PayableAmount.Equal(decimal.NewFromInt(19000)))
		assert.False(t, tok.TokenUsed)
	}

	app, err := store.GetApplication(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, app.ApprovalStatus)
	assert.Equal(t, "admin@example.com", app.ApprovedBy)
	require.NotNil(t, app.ApprovedAt)
	assert.Equal(t, payment.StatusPending, app.PaymentStatus)

	sent := mail.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "applicant42@example.com", sent[0].To)
	assert.Contains(t, sent[0].HTML, result.DirectToken.Token)
	assert.Contains(t, sent[0].HTML, result.GatewayToken.Token)
	assert.Contains(t, sent[0].HTML, "19000.00")
}

func TestApprovalService_MissingFeesWritesNothing(t *testing.T) {
	mail := &fakeMailer{}
	svc, store := newApprovalService(t, mail)
	ctx := context.Background()
	testutil.SeedApplication(t, store, 5, nil, nil)

	_, err := svc.Decide(ctx, 5, models.ApprovalApproved, "admin@example.com")
	require.ErrorIs(t, err, ErrFeesMissing)

	app, err := store.GetApplication(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, app.ApprovalStatus)
	assert.Nil(t, app.ApprovedAt)

	tokens, err := store.ListTokens(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, tokens)
	assert.Empty(t, mail.messages())
}

func TestApprovalService_MailFailureKeepsApproval(t *testing.T) {
	mail := &fakeMailer{err: errors.New("mail api unavailable")}
	svc, store := newApprovalService(t, mail)
	ctx := context.Background()
	testutil.SeedApplication(t, store, 9, 50000, 0)

	result, err := svc.Decide(ctx, 9, models.ApprovalApproved, "admin@example.com")
	require.NoError(t, err)
	assert.False(t, result.EmailSent)

	app, err := store.GetApplication(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, app.ApprovalStatus)
	assert.Equal(t, payment.StatusPending, app.PaymentStatus)

	tokens, err := store.ListTokens(ctx, 9)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
}

func TestApprovalService_Reject(t *testing.T) {
	mail := &fakeMailer{}
	svc, store := newApprovalService(t, mail)
	ctx := context.Background()
	testutil.SeedApplication(t, store, 3, nil, nil)

	result, err := svc.Decide(ctx, 3, models.ApprovalRejected, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, result.EmailSent)
	assert.Nil(t, result.DirectToken)

	app, err := store.GetApplication(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, app.ApprovalStatus)
	assert.Equal(t, payment.StatusNone, app.PaymentStatus)

	sent := mail.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Update on your application", sent[0].Subject)
	assert.False(t, strings.Contains(sent[0].HTML, "/api/pay"))
}

func TestApprovalService_ReapprovalAfterLinkCreated(t *testing.T) {
	svc, store := newApprovalService(t, &fakeMailer{})
	ctx := context.Background()
	testutil.SeedApplication(t, store, 11, 1000, 0)
	setStatus(t, store, 11, payment.StatusPending, payment.StatusLinkCreated)

	result, err := svc.Decide(ctx, 11, models.ApprovalApproved, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, result.EmailSent)

	app, err := store.GetApplication(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusLinkCreated, app.PaymentStatus)
}

func TestApprovalService_Errors(t *testing.T) {
	svc, store := newApprovalService(t, &fakeMailer{})
	ctx := context.Background()
	testutil.SeedApplication(t, store, 1, 1000, 0)

	_, err := svc.Decide(ctx, 404, models.ApprovalApproved, "admin@example.com")
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	_, err = svc.Decide(ctx, 1, "Maybe", "admin@example.com")
	assert.ErrorIs(t, err, ErrInvalidDecision)

	setStatus(t, store, 1, payment.StatusPending, payment.StatusPaid)
	_, err = svc.Decide(ctx, 1, models.ApprovalApproved, "admin@example.com")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestApprovalService_ReapprovalRevokesEarlierTokens(t *testing.T) {
	svc, store := newApprovalService(t, &fakeMailer{})
	ctx := context.Background()
	testutil.SeedApplication(t, store, 42, 20000, 0)

	first, err := svc.Decide(ctx, 42, models.ApprovalApproved, "admin@example.com")
	require.NoError(t, err)
	assert.Zero(t, first.RevokedTokens)

	require.NoError(t, store.UpdateAdminFilled(ctx, 42, models.JSONMap{"total_course_fees": 20000, "discount": 5000}))
	second, err := svc.Decide(ctx, 42, models.ApprovalApproved, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.RevokedTokens)
	assert.True(t, second.Fees.Payable.Equal(decimal.NewFromInt(15000)))

	for _, old := range []*models.PaymentToken{first.DirectToken, first.GatewayToken} {
		_, err := svc.tokens.Validate(ctx, old.Token, old.PaymentType)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	}
	current, err := svc.tokens.Validate(ctx, second.GatewayToken.Token, payment.RouteRazorpay)
	require.NoError(t, err)
	assert.True(t, current.PayableAmount.Equal(decimal.NewFromInt(15000)))
}

func TestApprovalService_RejectionRevokesTokens(t *testing.T) {
	mail := &fakeMailer{}
	svc, store := newApprovalService(t, mail)
	ctx := context.Background()
	testutil.SeedApplication(t, store, 42, 20000, 0)

	approved, err := svc.Decide(ctx, 42, models.ApprovalApproved, "admin@example.com")
	require.NoError(t, err)

	rejected, err := svc.Decide(ctx, 42, models.ApprovalRejected, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rejected.RevokedTokens)

	_, err = svc.tokens.Validate(ctx, approved.GatewayToken.Token, payment.RouteRazorpay)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.tokens.Validate(ctx, approved.DirectToken.Token, payment.RouteDirect)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.Len(t, mail.messages(), 2)
}

func TestApprovalService_NothingPayable(t *testing.T) {
	mail := &fakeMailer{}
	svc, store := newApprovalService(t, mail)
	ctx := context.Background()
	testutil.SeedApplication(t, store, 8, 1000, 1500)

	_, err := svc.Decide(ctx, 8, models.ApprovalApproved, "admin@example.com")
	assert.ErrorIs(t, err, ErrNothingPayable)

	tokens, err := store.ListTokens(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, tokens)
	app, err := store.GetApplication(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, app.ApprovalStatus)
	assert.Empty(t, mail.messages())
}
