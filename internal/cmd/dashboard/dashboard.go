// Package dashboard wires flags, environment, and the ledger profile into
// a running dashboard server.
package dashboard

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/harborline/ledgerdeck/internal/dashboard"
	"github.com/harborline/ledgerdeck/internal/ledger"
	"github.com/harborline/ledgerdeck/internal/platform/config"
	"github.com/harborline/ledgerdeck/internal/platform/otel"
)

const defaultHTTPAddr = "localhost:8095"

// Config holds the dashboard command configuration.
type Config struct {
	HTTPAddr    string `env:"LEDGERDECK_HTTP_ADDR"`
	GatewayURL  string `env:"LEDGERDECK_GATEWAY_URL"`
	TokenSecret string `env:"LEDGERDECK_TOKEN_SECRET"`
	ProfilePath string `env:"LEDGERDECK_PROFILE"`
	CachePath   string `env:"LEDGERDECK_CACHE_PATH"`
}

// ParseConfig layers environment values under command-line flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GatewayURL, "gateway-url", cfg.GatewayURL, "Ledger JSON gateway base URL")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "HS256 secret for minted ledger tokens")
	fs.StringVar(&cfg.ProfilePath, "profile", cfg.ProfilePath, "Ledger profile YAML path")
	fs.StringVar(&cfg.CachePath, "cache-path", cfg.CachePath, "SQLite snapshot cache path")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the dashboard server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	shutdownTracing, err := otel.Setup(ctx, "dashboard")
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	profile, err := ledger.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return fmt.Errorf("load ledger profile: %w", err)
	}
	gatewayURL := strings.TrimSpace(cfg.GatewayURL)
	if gatewayURL == "" {
		gatewayURL = profile.GatewayURL
	}

	server, err := dashboard.NewServer(dashboard.Config{
		HTTPAddr:      cfg.HTTPAddr,
		GatewayURL:    gatewayURL,
		ApplicationID: profile.ApplicationID,
		TokenSecret:   cfg.TokenSecret,
		LedgerIDs:     profile.LedgerIDs,
		PackageIDs:    profile.PackageIDs,
		CachePath:     cfg.CachePath,
	})
	if err != nil {
		return fmt.Errorf("init dashboard server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve dashboard: %w", err)
	}
	return nil
}
