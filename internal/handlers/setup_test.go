package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/farellandr/admitpay/config"
	"github.com/farellandr/admitpay/internal/gateway"
	"github.com/farellandr/admitpay/internal/mailer"
	"github.com/farellandr/admitpay/internal/middleware"
	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/payment"
	"github.com/farellandr/admitpay/internal/repository"
	"github.com/farellandr/admitpay/internal/server"
	"github.com/farellandr/admitpay/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	jwtSecret     = "test-jwt-secret"
	webhookSecret = "test-webhook-secret"
	callbackToken = "test-callback-token"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type stubGateway struct {
	mu    sync.Mutex
	calls int
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) CreatePaymentLink(_ context.Context, req gateway.LinkRequest) (*gateway.Link, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return &gateway.Link{
		ID:  fmt.Sprintf("plink_%d_%d", req.ApplicationID, g.calls),
		URL: fmt.Sprintf("https://rzp.io/i/%d-%d", req.ApplicationID, g.calls),
	}, nil
}

type testEnv struct {
	router *gin.Engine
	store  *repository.Store
	mail   *recordingMailer
	gw     *stubGateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewStore(t)
	mail := &recordingMailer{}
	gw := &stubGateway{}
	cfg := &config.Config{
		JWTSecret:             jwtSecret,
		PublicBaseURL:         "https://api.example.com",
		AppBaseURL:            "https://portal.example.com",
		Currency:              "INR",
		TokenValidity:         7 * 24 * time.Hour,
		RazorpayWebhookSecret: webhookSecret,
		XenditCallbackToken:   callbackToken,
		InstituteName:         "Admissions Office",
		SupportEmail:          "admissions@example.com",
		PayRateLimit:          1000,
		LoginRateLimit:        1000,
	}

	router := server.NewRouter(&server.Dependencies{
		Config: cfg,
		Store:  store,
		Mailer: mail,
		Gateways: map[payment.Route]gateway.Gateway{
			payment.RouteDirect:   gw,
			payment.RouteRazorpay: gw,
		},
		Logger: zap.NewNop(),
	})
	return &testEnv{router: router, store: store, mail: mail, gw: gw}
}

func session(t *testing.T, role string) string {
	t.Helper()
	token, err := middleware.SignSession(jwtSecret, &models.User{
		ID:    uuid.New(),
		Email: role + "@example.com",
		Role:  models.Role{Name: role},
	}, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
