// Package dashboard hosts the ledger dashboard HTTP service: party login,
// contract views, and command submission against a ledger JSON gateway.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/message"
	"golang.org/x/time/rate"

	"github.com/harborline/ledgerdeck/internal/contracts"
	"github.com/harborline/ledgerdeck/internal/dashboard/cache"
	"github.com/harborline/ledgerdeck/internal/dashboard/i18n"
	"github.com/harborline/ledgerdeck/internal/dashboard/metrics"
	"github.com/harborline/ledgerdeck/internal/dashboard/platform/httpx"
	"github.com/harborline/ledgerdeck/internal/dashboard/platform/observability"
	"github.com/harborline/ledgerdeck/internal/dashboard/platform/ratelimit"
	"github.com/harborline/ledgerdeck/internal/ledger"
	"github.com/harborline/ledgerdeck/internal/platform/timeouts"
)

var subStaticFS = func() (fs.FS, error) {
	return fs.Sub(assetsFS, "static")
}

// Config defines the inputs for the dashboard server.
type Config struct {
	HTTPAddr      string
	GatewayURL    string
	ApplicationID string
	// TokenSecret signs the HS256 ledger tokens minted at login.
	TokenSecret string
	// LedgerIDs are the candidate ledger IDs probed during login.
	LedgerIDs []string
	// PackageIDs are the candidate package IDs probed after login.
	PackageIDs []string
	// CachePath is the SQLite file for contract snapshots.
	CachePath string
	// LoginRateLimit throttles POST /login per client IP.
	LoginRateLimit rate.Limit
	LoginBurst     int
}

// Server hosts the dashboard HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	snapshots  *cache.Store
}

type handler struct {
	config     Config
	gateway    *ledger.Client
	auth       *ledger.Authenticator
	packages   *ledger.PackageResolver
	sessions   *sessionStore
	snapshots  *cache.Store
	metrics    *metrics.Metrics
	loginLimit *ratelimit.Limiter
}

// handlerDependencies keeps the gateway client and stores injectable so
// tests can point the handler at a fake gateway.
type handlerDependencies struct {
	gateway   *ledger.Client
	snapshots *cache.Store
	metrics   *metrics.Metrics
}

// localizer resolves the request locale, optionally persists a cookie,
// and returns a message printer with the resolved language tag string.
func localizer(w http.ResponseWriter, r *http.Request) (*message.Printer, string) {
	tag, setCookie := i18n.ResolveTag(r)
	if setCookie {
		i18n.SetLanguageCookie(w, tag)
	}
	return i18n.Printer(tag), tag.String()
}

// NewHandler assembles the route handlers around the given dependencies.
func NewHandler(config Config, deps handlerDependencies) (http.Handler, error) {
	gateway := deps.gateway
	if gateway == nil {
		if strings.TrimSpace(config.GatewayURL) == "" {
			return nil, errors.New("gateway url is required")
		}
		gateway = ledger.New(config.GatewayURL, nil)
	}
	if strings.TrimSpace(config.TokenSecret) == "" {
		return nil, errors.New("token secret is required")
	}
	m := deps.metrics
	if m == nil {
		m = metrics.New()
	}
	limit := config.LoginRateLimit
	if limit <= 0 {
		limit = rate.Every(2 * time.Second)
	}
	burst := config.LoginBurst
	if burst <= 0 {
		burst = 5
	}

	h := &handler{
		config:  config,
		gateway: gateway,
		auth: ledger.NewAuthenticator(gateway, ledger.TokenConfig{
			Secret:        config.TokenSecret,
			ApplicationID: config.ApplicationID,
			LedgerIDs:     config.LedgerIDs,
		}),
		packages:   ledger.NewPackageResolver(config.PackageIDs, contracts.ModuleName+":"+contracts.SimpleTokenEntity),
		sessions:   newSessionStore(),
		snapshots:  deps.snapshots,
		metrics:    m,
		loginLimit: ratelimit.New(limit, burst),
	}

	mux := http.NewServeMux()
	staticFS, err := subStaticFS()
	if err != nil {
		return nil, fmt.Errorf("resolve static assets: %w", err)
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	mux.HandleFunc("/", h.handleDashboard)
	mux.HandleFunc("/login", h.handleLogin)
	mux.HandleFunc("/logout", h.handleLogout)
	mux.HandleFunc("/refresh", h.handleRefresh)
	mux.HandleFunc("/tokens/issue", h.handleIssueToken)
	mux.HandleFunc("/escrows/release", h.handleReleaseEscrow)
	mux.HandleFunc("/locks/unlock", h.handleUnlockLock)
	mux.Handle("/metrics", m.Handler())

	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/status", h.handleStatus)

	logger := log.New(log.Writer(), log.Prefix(), log.Flags())
	wrapped := httpx.Chain(mux,
		httpx.RecoverPanic(),
		observability.RequestLogger(logger),
		observability.RequestMetrics(m.ObserveRequest),
		httpx.SecurityHeaders(),
		httpx.RequestID(),
	)
	return wrapped, nil
}

// NewServer builds a configured dashboard server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}

	var snapshots *cache.Store
	if strings.TrimSpace(config.CachePath) != "" {
		store, err := cache.Open(config.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open snapshot cache: %w", err)
		}
		snapshots = store
	}

	handler, err := NewHandler(config, handlerDependencies{snapshots: snapshots})
	if err != nil {
		if snapshots != nil {
			_ = snapshots.Close()
		}
		return nil, fmt.Errorf("build handler: %w", err)
	}
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
		snapshots:  snapshots,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("dashboard server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("dashboard listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases resources held by the server.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.snapshots != nil {
		if err := s.snapshots.Close(); err != nil {
			log.Printf("close snapshot cache: %v", err)
		}
	}
}
