// Package siteverify checks human verification tokens against a siteverify
// endpoint. Turnstile and reCAPTCHA share the protocol: a form POST of
// secret, response, and remoteip answered by {"success": bool, "error-codes": [...]}.
package siteverify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contactgate/internal/core/version"
	perr "contactgate/internal/platform/errors"
	"contactgate/internal/platform/logger"
)

// Well known endpoints
const (
	TurnstileURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	RecaptchaURL = "https://www.google.com/recaptcha/api/siteverify"

	defaultTimeout = 10 * time.Second
	maxReplyBytes  = 64 << 10
)

// User facing messages; provider detail stays in the logs
const (
	MsgMissingToken = "Verification token is required."
	MsgFailed       = "Verification failed. Please try again."
	MsgUnavailable  = "Verification service is unavailable. Please try again later."
	MsgMisconfig    = "Server configuration error."
)

// Options configures the Verifier
type Options struct {
	URL     string
	Secret  string
	Timeout time.Duration

	// MinScore rejects reCAPTCHA v3 answers below it; 0 disables the check
	MinScore float64

	UserAgent  string
	HTTPClient *http.Client
}

// Result is the normalized provider answer
type Result struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
	Action     string   `json:"action"`
	Score      *float64 `json:"score"`
}

// Verifier calls the provider once per token
type Verifier struct {
	opts Options
	http *http.Client
	log  *logger.Logger
}

// New builds a Verifier with defaults filled in
func New(o Options) *Verifier {
	if strings.TrimSpace(o.URL) == "" {
		o.URL = TurnstileURL
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = version.UserAgent()
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Verifier{opts: o, http: hc, log: logger.Named("siteverify")}
}

// Configured reports whether a secret is present
func (v *Verifier) Configured() bool { return strings.TrimSpace(v.opts.Secret) != "" }

// Verify checks token for remoteIP.
// Errors carry MissingToken, Misconfigured, Verification, or Unavailable codes.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Result{}, perr.New(perr.ErrorCodeMissingToken, MsgMissingToken)
	}
	if !v.Configured() {
		logger.C(ctx).Error().Msg("verification secret is not configured")
		return Result{}, perr.New(perr.ErrorCodeMisconfigured, MsgMisconfig)
	}

	ctx, cancel := context.WithTimeout(ctx, v.opts.Timeout)
	defer cancel()

	form := url.Values{}
	form.Set("secret", v.opts.Secret)
	form.Set("response", token)
	if remoteIP != "" && remoteIP != "unknown" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.opts.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, perr.Wrap(err, perr.ErrorCodeMisconfigured, MsgMisconfig)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", v.opts.UserAgent)

	start := time.Now()
	resp, err := v.http.Do(req)
	if err != nil {
		ev := logger.C(ctx).Warn().Err(err).Dur("elapsed", time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) {
			ev = ev.Bool("timeout", true)
		}
		ev.Msg("verification request failed")
		return Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, MsgUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.C(ctx).Warn().Int("status", resp.StatusCode).Msg("verification provider returned non-2xx")
		return Result{}, perr.New(perr.ErrorCodeUnavailable, MsgUnavailable)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, MsgUnavailable)
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("verification provider sent malformed JSON")
		return Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, MsgUnavailable)
	}

	if !res.Success {
		logger.C(ctx).Warn().Strs("error_codes", res.ErrorCodes).Str("hostname", res.Hostname).Msg("verification rejected")
		return res, perr.Wrapf(errors.New(strings.Join(res.ErrorCodes, ",")), perr.ErrorCodeVerification, "%s", MsgFailed)
	}
	if v.opts.MinScore > 0 && res.Score != nil && *res.Score < v.opts.MinScore {
		logger.C(ctx).Warn().Float64("score", *res.Score).Float64("min_score", v.opts.MinScore).Msg("verification score too low")
		return res, perr.New(perr.ErrorCodeVerification, MsgFailed)
	}

	v.log.Debug().Dur("elapsed", time.Since(start)).Msg("verification passed")
	return res, nil
}
