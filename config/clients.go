package config

import (
	"context"
	"fmt"
	"time"

	"github.com/farellandr/admitpay/internal/gateway"
	"github.com/farellandr/admitpay/internal/mailer"
	"github.com/farellandr/admitpay/internal/payment"
	"github.com/razorpay/razorpay-go"
	"github.com/redis/go-redis/v9"
	"github.com/xendit/xendit-go/v6"
	"go.uber.org/zap"
)

func InitRazorpayClient(cfg *Config) *razorpay.Client {
	return razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
}

func InitXenditClient(cfg *Config) *xendit.APIClient {
	return xendit.NewClient(cfg.XenditSecretKey)
}

// InitGateways picks the provider for each payment route.
func InitGateways(cfg *Config) (map[payment.Route]gateway.Gateway, error) {
	providers := map[string]func() gateway.Gateway{}
	if cfg.RazorpayKeyID != "" {
		rz := gateway.NewRazorpayGateway(InitRazorpayClient(cfg))
		providers[gateway.ProviderRazorpay] = func() gateway.Gateway { return rz }
	}
	if cfg.XenditSecretKey != "" {
		xnd := gateway.NewXenditGateway(InitXenditClient(cfg))
		providers[gateway.ProviderXendit] = func() gateway.Gateway { return xnd }
	}

	gateways := make(map[payment.Route]gateway.Gateway, len(payment.Routes))
	for route, name := range map[payment.Route]string{
		payment.RouteDirect:   cfg.DirectProvider,
		payment.RouteRazorpay: cfg.GatewayProvider,
	} {
		build, ok := providers[name]
		if !ok {
			return nil, fmt.Errorf("payment route %s: provider %q is not configured", route, name)
		}
		gateways[route] = build()
	}
	return gateways, nil
}

func InitMailer(cfg *Config) (mailer.Mailer, error) {
	switch cfg.MailDriver {
	case "graph":
		return mailer.NewGraphMailer(mailer.GraphConfig{
			TenantID:     cfg.GraphTenantID,
			ClientID:     cfg.GraphClientID,
			ClientSecret: cfg.GraphClientSecret,
			Sender:       cfg.MailSender,
		}), nil
	case "smtp":
		return mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailSender,
		}), nil
	}
	return nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
}

// InitRedis returns nil when no address is configured.
func InitRedis(ctx context.Context, cfg *Config, log *zap.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	const maxRetries = 5
	retryDelay := 2 * time.Second

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	var err error
	for i := 0; i < maxRetries; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		log.Warn("redis not reachable", zap.Int("attempt", i+1), zap.Int("max_attempts", maxRetries), zap.Error(err))
		select {
		case <-ctx.Done():
			client.Close()
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	client.Close()
	return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
}
