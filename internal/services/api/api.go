// Package api provides the HTTP API for the application
package api

import (
	"net/http"
	"time"

	"contactgate/internal/platform/config"
	"contactgate/internal/platform/logger"
	phttp "contactgate/internal/platform/net/http"
	"contactgate/internal/platform/net/middleware"
	ptime "contactgate/internal/platform/time"

	"contactgate/internal/modkit"
	"contactgate/internal/modkit/httpkit"
	"contactgate/internal/modkit/module"

	metamod "contactgate/internal/services/api/meta/module"
	contactmod "contactgate/internal/services/contact/module"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Logger *logger.Logger
	Clock  ptime.Clock

	// Store backs the contact rate limit; nil uses an in-process map
	Store contactmod.RateStore

	// Metrics enables /metrics and the contact collectors when set
	Metrics *prometheus.Registry

	EnableProfiler bool
}

// Mount mounts the API service onto the given router and returns the contact
// module's ports so the caller can report what was wired
func Mount(r phttp.Router, opt Options) contactmod.Ports {
	deps := modkit.Deps{
		Log:   opt.Logger,
		Cfg:   opt.Config,
		Clock: opt.Clock,
	}
	if opt.Metrics != nil {
		deps.Metrics = opt.Metrics
	}

	contactOpts := contactmod.FromConfig(opt.Config)
	// an invalid proxy list leaves the zero policy; the contact module reports it
	clientIP, _ := contactOpts.ClientIPPolicy()

	cc := opt.Config.Prefix(contactmod.EnvPrefix)
	stack := httpkit.CommonStack(httpkit.StackOptions{
		Timeout:    cc.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		Slow:       cc.MayDuration("SLOW_REQUEST", 2*time.Second),
		QuietPaths: []string{"/api/v1/meta/health", "/api/v1/meta/ready", "/metrics"},
		ClientIP:   clientIP,
	})

	// the contact endpoint sits at the root, CORS is its own business
	contact := contactmod.New(deps, contactOpts, opt.Store, modkit.WithMiddlewares(stack...))
	ports := module.MustPortsOf[contactmod.Ports](contact)
	contact.MountRoutes(r)

	mods := []module.Module{
		metamod.New(deps, ports),
	}

	// versioned ops API behind the common stack and a read-only CORS policy
	opsCORS := middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: contactOpts.AllowedOrigins,
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
	ops := append(append([]func(http.Handler) http.Handler(nil), stack...), opsCORS)
	httpkit.MountAPIV1(r, ops, func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})

	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	if opt.Metrics != nil {
		httpkit.MountUnder(r, "/metrics", stack, func(sub httpkit.Router) {
			sub.Handle("/", promhttp.HandlerFor(opt.Metrics, promhttp.HandlerOpts{Registry: opt.Metrics}))
		})
	}

	return ports
}
