package bootstrap

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/sshrobotics-web/internal/config"
	"github.com/wolfman30/sshrobotics-web/internal/database"
	httpmiddleware "github.com/wolfman30/sshrobotics-web/internal/http/middleware"
	"github.com/wolfman30/sshrobotics-web/internal/notify"
	"github.com/wolfman30/sshrobotics-web/internal/observability/metrics"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRateLimiter picks the shared Redis limiter when a client is available
// and falls back to a per-process token bucket. The returned stop func
// releases the in-memory limiter's background loop.
func BuildRateLimiter(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) (httpmiddleware.Limiter, func()) {
	if logger == nil {
		logger = logging.Default()
	}
	perMinute := 10
	burst := 5
	if cfg != nil {
		if cfg.RateLimitPerMinute > 0 {
			perMinute = cfg.RateLimitPerMinute
		}
		if cfg.RateLimitBurst > 0 {
			burst = cfg.RateLimitBurst
		}
	}

	if redisClient != nil {
		logger.Info("rate limiting submissions via redis", "per_minute", perMinute)
		return httpmiddleware.NewRedisLimiter(redisClient, perMinute, time.Minute), func() {}
	}

	logger.Info("rate limiting submissions in memory", "per_minute", perMinute, "burst", burst)
	limiter := httpmiddleware.NewRateLimiter(float64(perMinute)/60, burst)
	return limiter, limiter.Stop
}

// BuildEmailSender chooses SendGrid when an API key is configured, SES when
// EMAIL_PROVIDER=ses and an AWS config is available, and the logging stub
// otherwise.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger)
	}

	if strings.TrimSpace(cfg.SendGridAPIKey) != "" {
		logger.Info("email notifications via sendgrid", "from", cfg.SendGridFromEmail)
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	}

	if cfg.EmailProvider == "ses" {
		if awsCfg == nil {
			logger.Warn("EMAIL_PROVIDER=ses but no AWS config; using stub sender")
			return notify.NewStubEmailSender(logger)
		}
		logger.Info("email notifications via ses", "from", cfg.SESFromEmail)
		return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	}

	return notify.NewStubEmailSender(logger)
}

// BuildNotifier returns the team notifier, or nil when NOTIFY_EMAIL is unset.
func BuildNotifier(cfg *appconfig.Config, sender notify.EmailSender, logger *logging.Logger) *notify.Service {
	if cfg == nil || strings.TrimSpace(cfg.NotifyEmail) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	svc := notify.NewService(sender, cfg.NotifyEmail, logger)
	if !svc.Enabled() {
		return nil
	}
	logger.Info("submission notifications enabled", "to", cfg.NotifyEmail)
	return svc
}

// BuildSelector wires the provider selector from config. Nothing connects
// until the first request resolves a provider.
func BuildSelector(cfg *appconfig.Config, awsCfg *aws.Config, m *metrics.FormMetrics, logger *logging.Logger) *database.Selector {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := 10 * time.Second
	if cfg.HTTPClientTimeout > 0 {
		timeout = cfg.HTTPClientTimeout
	}
	deps := database.Dependencies{
		HTTPClient: &http.Client{Timeout: timeout},
		AWS:        awsCfg,
		Logger:     logger,
	}
	return database.NewSelector(database.SelectorConfig{
		DatabaseType: cfg.DatabaseType,
		Build:        database.ConfigBuilder(cfg, deps),
		Logger:       logger,
		Metrics:      m,
		ListLimit:    cfg.ListLimit,
	})
}

// NeedsAWS reports whether any configured component talks to AWS.
func NeedsAWS(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	kind, _ := database.ResolveKind(cfg.DatabaseType)
	sesEmail := cfg.EmailProvider == "ses" && strings.TrimSpace(cfg.SendGridAPIKey) == ""
	return kind == database.KindDynamoDB || sesEmail
}
