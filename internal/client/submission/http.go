package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"contactgate/internal/core/contact"
	perr "contactgate/internal/platform/errors"
	pnet "contactgate/internal/platform/net"
)

// MsgNetwork is shown when the edge could not be reached or answered garbage
const MsgNetwork = "Could not reach the server. Please check your connection and try again."

const maxReply = 64 << 10

// HTTPOptions tunes the HTTP submitter
type HTTPOptions struct {
	Client    *http.Client
	Origin    string
	UserAgent string
	Timeout   time.Duration
}

// HTTP posts payloads to the contact endpoint as JSON
type HTTP struct {
	endpoint string
	opt      HTTPOptions
}

// NewHTTP builds a submitter for endpoint
func NewHTTP(endpoint string, opt HTTPOptions) *HTTP {
	if opt.Client == nil {
		opt.Client = http.DefaultClient
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 30 * time.Second
	}
	return &HTTP{endpoint: endpoint, opt: opt}
}

// Submit sends p and maps the reply envelope to a Receipt or a coded error
func (h *HTTP) Submit(ctx context.Context, p contact.Payload) (Receipt, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Receipt{}, perr.Wrap(err, perr.ErrorCodeJSON, "encode payload")
	}

	ctx, cancel := context.WithTimeout(ctx, h.opt.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, perr.Wrap(err, perr.ErrorCodeMisconfigured, "bad endpoint")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if h.opt.Origin != "" {
		req.Header.Set("Origin", h.opt.Origin)
	}
	if h.opt.UserAgent != "" {
		req.Header.Set("User-Agent", h.opt.UserAgent)
	}

	res, err := h.opt.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Receipt{}, perr.Wrap(err, perr.ErrorCodeCanceled, MsgCanceled)
		}
		return Receipt{}, perr.Wrap(err, perr.ErrorCodeUnavailable, MsgNetwork)
	}
	defer res.Body.Close()

	var out pnet.Result
	raw, err := io.ReadAll(io.LimitReader(res.Body, maxReply))
	if err != nil {
		return Receipt{}, perr.Wrap(err, perr.ErrorCodeUnavailable, MsgNetwork)
	}
	decodeErr := json.Unmarshal(raw, &out)

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		if decodeErr != nil || !out.Success {
			return Receipt{}, perr.New(perr.ErrorCodeUnavailable, MsgNetwork)
		}
		return Receipt{ReferenceID: out.ReferenceID, Message: out.Message}, nil
	}

	code := out.Code
	if decodeErr != nil || code == perr.ErrorCodeUnknown {
		code = perr.CodeForStatus(res.StatusCode)
	}
	msg := out.Message
	if decodeErr != nil || msg == "" {
		msg = http.StatusText(res.StatusCode)
	}
	return Receipt{}, perr.Newf(code, "%s", msg)
}
