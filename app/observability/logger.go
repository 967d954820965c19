package observability

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/grafana/loki-client-go/loki"
	promconfig "github.com/prometheus/common/config"
	slogloki "github.com/samber/slog-loki/v3"
	slogmulti "github.com/samber/slog-multi"
)

// LoggerOptions configures the root logger.
type LoggerOptions struct {
	ServiceName string
	Level       slog.Level
	LokiURL     string
	TenantID    string
	Username    string
	Password    string
}

// NewLogger builds the root logger. Records always go to stdout; when a Loki URL
// is configured they are also shipped to Loki. The returned stop func flushes
// the Loki client and must be called on shutdown.
func NewLogger(opts LoggerOptions) (*slog.Logger, func(), error) {
	stdout := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: opts.Level})

	if opts.LokiURL == "" {
		return slog.New(stdout).With(slog.String("service", opts.ServiceName)), func() {}, nil
	}

	lokiCfg, err := loki.NewDefaultConfig(opts.LokiURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid loki url: %w", err)
	}
	lokiCfg.TenantID = opts.TenantID
	if opts.Username != "" {
		lokiCfg.Client.BasicAuth = &promconfig.BasicAuth{
			Username: opts.Username,
			Password: promconfig.Secret(opts.Password),
		}
	}

	client, err := loki.New(lokiCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create loki client: %w", err)
	}

	lokiHandler := slogloki.Option{Level: opts.Level, Client: client}.NewLokiHandler()

	logger := slog.New(slogmulti.Fanout(stdout, lokiHandler)).
		With(slog.String("service", opts.ServiceName))

	return logger, client.Stop, nil
}
