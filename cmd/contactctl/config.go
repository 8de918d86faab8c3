package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"contactgate/internal/client/pending"
	"contactgate/internal/client/submission"
	"contactgate/internal/core/version"

	"github.com/caarlos0/env/v10"
)

type cliConfig struct {
	Endpoint string `env:"CONTACTCTL_ENDPOINT" envDefault:"http://localhost:4000/contact"`
	// SessionDir holds one directory per session; Session picks ours
	SessionDir string        `env:"CONTACTCTL_SESSION_DIR"`
	Session    string        `env:"CONTACTCTL_SESSION"`
	MinFill    time.Duration `env:"CONTACTCTL_MIN_FILL" envDefault:"0s"`
	Timeout    time.Duration `env:"CONTACTCTL_TIMEOUT" envDefault:"30s"`
	Origin     string        `env:"CONTACTCTL_ORIGIN"`
	TTL        time.Duration `env:"CONTACTCTL_PENDING_TTL" envDefault:"15m"`
}

func loadConfig() (cliConfig, error) {
	var c cliConfig
	if err := env.Parse(&c); err != nil {
		return c, err
	}
	if c.SessionDir == "" {
		c.SessionDir = defaultSessionRoot()
	}
	if c.Session == "" {
		// the invoking shell: every terminal keeps its own envelope
		c.Session = "ppid-" + strconv.Itoa(os.Getppid())
	}
	return c, nil
}

// defaultSessionRoot prefers the per-user runtime dir, which the login
// session clears, over a uid-scoped temp dir
func defaultSessionRoot() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "contactctl")
	}
	return filepath.Join(os.TempDir(), "contactctl-"+strconv.Itoa(os.Getuid()))
}

// sessionPath is where this session's envelope lives
func (c cliConfig) sessionPath() string {
	return filepath.Join(c.SessionDir, sessionName(c.Session))
}

// sessionName keeps a session id to one safe path element
func sessionName(id string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
	if strings.Trim(name, "_") == "" {
		return "default"
	}
	return name
}

// machine wires the on-disk envelope and the HTTP submitter
func (c cliConfig) machine() (*submission.Machine, *pending.Store, error) {
	dir, err := pending.NewDir(c.sessionPath())
	if err != nil {
		return nil, nil, err
	}
	store := pending.New(dir, pending.WithTTL(c.TTL))
	sub := submission.NewHTTP(c.Endpoint, submission.HTTPOptions{
		Origin:    c.Origin,
		UserAgent: "contactctl/" + version.Info().Version,
		Timeout:   c.Timeout,
	})
	return submission.New(store, sub, submission.WithMinFill(c.MinFill)), store, nil
}
