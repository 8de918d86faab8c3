// Package delivery hands a rendered contact message to exactly one downstream
// transport. Every failure, whatever its cause, is an ErrorCodeDelivery error
// with one public message; transport detail is kept in the wrapped cause.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"contactgate/internal/core/render"
	"contactgate/internal/core/version"
	perr "contactgate/internal/platform/errors"
)

// MsgFailed is the only text a visitor sees when delivery fails
const MsgFailed = "Failed to send message. Please try again later."

const maxReplyBytes = 64 << 10

// Channel sends one rendered message
type Channel interface {
	Name() string
	Send(ctx context.Context, m render.Message) error
}

// failf wraps cause as a delivery failure
func failf(cause error, format string, a ...any) error {
	if cause == nil {
		cause = fmt.Errorf(format, a...)
	} else {
		cause = fmt.Errorf(format+": %w", append(a, cause)...)
	}
	return perr.Wrap(cause, perr.ErrorCodeDelivery, MsgFailed)
}

// httpDoer is the shared outbound client for the HTTP based channels
type httpDoer struct {
	client *http.Client
	ua     string
}

func newHTTPDoer(c *http.Client) httpDoer {
	if c == nil {
		c = &http.Client{Timeout: 15 * time.Second}
	}
	return httpDoer{client: c, ua: version.UserAgent()}
}

// do sends req and returns the (bounded) body of a 2xx reply
func (d httpDoer) do(req *http.Request, channel string) ([]byte, error) {
	req.Header.Set("User-Agent", d.ua)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, failf(err, "%s: request", channel)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, failf(err, "%s: read reply", channel)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, failf(nil, "%s: status %d: %s", channel, resp.StatusCode, snippet(body))
	}
	return body, nil
}

func (d httpDoer) postJSON(ctx context.Context, channel, url string, hdr http.Header, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, failf(err, "%s: encode", channel)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, failf(err, "%s: build request", channel)
	}
	for k, vv := range hdr {
		for _, val := range vv {
			req.Header.Add(k, val)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return d.do(req, channel)
}

// snippet keeps provider error bodies short in logs
func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// mailbox formats "Name <addr>" or just addr
func mailbox(name, addr string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%q <%s>", name, addr)
}
