package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jackwill99/temporal-hr/internal/config"
	"github.com/jackwill99/temporal-hr/internal/ledger"
	"github.com/jackwill99/temporal-hr/internal/mail"
	"github.com/jackwill99/temporal-hr/internal/scoring"
)

// NewLogger builds the process logger from the log section.
func NewLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// OpenLedger opens the configured backend. The returned closer releases the
// backend's connections and is never nil.
func OpenLedger(ctx context.Context, cfg config.LedgerConfig, logger *slog.Logger) (ledger.Ledger, io.Closer, error) {
	opts := []ledger.Option{ledger.WithLogger(logger)}

	switch cfg.Backend {
	case config.BackendFile:
		l, err := ledger.NewFileLedger(cfg.DataDir, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open file ledger: %w", err)
		}
		return l, nopCloser{}, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return ledger.NewRedisLedger(client, cfg.RedisPrefix, opts...), client, nil

	case config.BackendPostgres:
		db, err := ledger.OpenPostgres(ctx, cfg.PostgresURL, ledger.DefaultPostgresOptions())
		if err != nil {
			return nil, nil, err
		}
		if err := ledger.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate ledger: %w", err)
		}
		return ledger.NewPostgresLedger(db, opts...), db, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown ledger backend %q", config.ErrInvalid, cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewScorer builds the scorer chain: Gemini when an API key is configured,
// then the keyword heuristic. Both read resume text from PDFs.
func NewScorer(cfg *config.Config, logger *slog.Logger) (scoring.Scorer, error) {
	resume := scoring.NewPDFResumeReader(logger)
	chain := make([]scoring.Scorer, 0, 2)

	if cfg.Google.APIKey != "" {
		gemini, err := scoring.NewGeminiScorer(scoring.GeminiConfig{
			APIKey:   cfg.Google.APIKey,
			Model:    cfg.Gemini.Model,
			Endpoint: cfg.Gemini.Endpoint,
			Timeout:  cfg.Gemini.Timeout,
		}, &http.Client{Timeout: cfg.Gemini.Timeout}, resume)
		if err != nil {
			return nil, err
		}
		chain = append(chain, gemini)
	} else {
		logger.Info("No Google API key configured, using keyword scorer only")
	}
	chain = append(chain, scoring.NewKeywordScorer(resume))

	return scoring.NewFallbackScorer(logger, chain...), nil
}

// NewSender builds the configured mail transport, rate limited when
// mail.rate_per_second is positive. A disabled transport yields a sender whose
// results report smtp_not_configured.
func NewSender(ctx context.Context, cfg *config.Config, logger *slog.Logger) (mail.Sender, error) {
	var sender mail.Sender

	transport := cfg.MailTransport()
	switch transport {
	case config.TransportSMTP:
		s, err := mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Timeout:  cfg.SMTP.Timeout,
		})
		if err != nil {
			logger.Warn("SMTP is not fully configured, notifications disabled", "error", err)
			sender = mail.DisabledSender{}
			break
		}
		sender = s

	case config.TransportSES:
		s, err := mail.NewSESSenderFromRegion(ctx, cfg.SES.Region, cfg.SES.From)
		if err != nil {
			return nil, fmt.Errorf("build SES sender: %w", err)
		}
		sender = s

	default:
		logger.Warn("Mail transport disabled, notifications will report not configured")
		sender = mail.DisabledSender{}
	}

	logger.Info("Mail transport ready", "transport", transport)
	return mail.NewRateLimitedSender(sender, cfg.Mail.RatePerSecond, cfg.Mail.Burst), nil
}
