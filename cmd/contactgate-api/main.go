// Command contactgate-api serves the contact form endpoint and its ops API
package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contactgate/internal/adapters/ratestore"
	"contactgate/internal/core/version"
	"contactgate/internal/platform/config"
	perr "contactgate/internal/platform/errors"
	"contactgate/internal/platform/logger"
	phttp "contactgate/internal/platform/net/http"
	"contactgate/internal/platform/net/middleware"

	"contactgate/internal/services/api"
	contactmod "contactgate/internal/services/contact/module"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	// .env files never override the real environment
	if err := config.LoadDotEnv(os.Getenv("ENV_FILE"), ".env"); err != nil {
		logger.Get().Warn().Err(err).Msg("env file ignored")
	}

	lo := logger.FromEnv()
	if lo.Service == "" {
		lo.Service = version.Service
	}
	logger.Init(lo)
	l := logger.Get()

	root := config.New()
	cc := root.Prefix(contactmod.EnvPrefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// a broken rate store must not take the form down; fall back to memory
	openCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	store, err := contactmod.OpenStore(openCtx, cc.MayString("REDIS_URL", ""), nil, cc.MayInt("RATE_SWEEP_ABOVE", ratestore.DefaultSweepAbove))
	cancel()
	if err != nil {
		l.Warn().Err(err).Str("backend", store.Backend()).Msg("rate store unavailable, using fallback")
	}

	var reg *prometheus.Registry
	if cc.MayBool("METRICS", true) {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// http server (reads CONTACT_PORT / CONTACT_DRAIN_TIMEOUT)
	srv := phttp.NewServer(cc, func(m *chi.Mux) {
		// load balancer probe, answered before any module middleware
		m.Use(middleware.Heartbeat("/ping"))
		m.NotFound(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			phttp.RespondError(w, r, perr.NotFoundf("not found"))
		})
		m.MethodNotAllowed(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			phttp.RespondError(w, r, perr.New(perr.ErrorCodeMethodNotAllowed, "Method not allowed."))
		})
	})

	ports := api.Mount(srv.Router(), api.Options{
		Config:         root,
		Logger:         l,
		Store:          store,
		Metrics:        reg,
		EnableProfiler: cc.MayBool("PROFILER", false),
	})

	l.Info().
		Str("version", version.Info().Version).
		Str("channel", ports.Channel).
		Str("rate_store", store.Backend()).
		Bool("configured", ports.Configured).
		Bool("metrics", reg != nil).
		Msg("contactgate starting")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		l.Fatal().Err(err).Msg("http server stopped")
	}
	l.Info().Msg("bye")
}
