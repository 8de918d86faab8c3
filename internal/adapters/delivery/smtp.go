package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"time"

	"contactgate/internal/core/render"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// SMTP submits through a mail server. Plain submission upgrades with STARTTLS
// when the server offers it, or fails when RequireTLS is set and it does not.
// ImplicitTLS dials TLS directly (port 465).
type SMTP struct {
	addr        string
	auth        sasl.Client
	from        string
	fromName    string
	recipients  []string
	implicitTLS bool
	requireTLS  bool
	tlsConfig   *tls.Config

	dial func(ctx context.Context, network, addr string) (net.Conn, error)
	now  func() time.Time
}

// SMTPOptions configures the SMTP channel; Username empty means no AUTH
type SMTPOptions struct {
	Addr        string
	Username    string
	Password    string
	From        string
	FromName    string
	To          []string
	ImplicitTLS bool
	RequireTLS  bool
}

// NewSMTP builds the SMTP channel
func NewSMTP(o SMTPOptions) *SMTP {
	var auth sasl.Client
	if o.Username != "" {
		auth = sasl.NewPlainClient("", o.Username, o.Password)
	}
	host, _, _ := net.SplitHostPort(o.Addr)
	return &SMTP{
		addr:        o.Addr,
		auth:        auth,
		from:        o.From,
		fromName:    o.FromName,
		recipients:  o.To,
		implicitTLS: o.ImplicitTLS,
		requireTLS:  o.RequireTLS,
		tlsConfig:   &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12},
		dial:        (&net.Dialer{}).DialContext,
		now:         time.Now,
	}
}

// Name implements Channel
func (s *SMTP) Name() string { return "smtp" }

// Send implements Channel. Every connection is bound to ctx, so the exchange
// stops when ctx ends and the message is never committed afterwards.
func (s *SMTP) Send(ctx context.Context, m render.Message) error {
	raw, err := s.build(m)
	if err != nil {
		return failf(err, "smtp: build message")
	}
	if err := s.submit(ctx, raw); err != nil {
		return failf(ctxCause(ctx, err), "smtp: send via %s", s.addr)
	}
	return nil
}

func (s *SMTP) submit(ctx context.Context, raw []byte) error {
	c, release, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer release()
	defer c.Close()

	if s.auth != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(s.auth); err != nil {
			return err
		}
	}

	if err := c.Mail(s.from, nil); err != nil {
		return err
	}
	for _, rcpt := range s.recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	// closing the data writer commits the message
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// open dials a client ready for AUTH and MAIL. Plain servers that advertise
// STARTTLS are redialed with the upgrade since the first EHLO is spent.
func (s *SMTP) open(ctx context.Context) (*smtp.Client, func(), error) {
	conn, release, err := s.connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	if s.implicitTLS {
		return smtp.NewClient(tls.Client(conn, s.tlsConfig)), release, nil
	}
	if s.requireTLS {
		c, err := smtp.NewClientStartTLS(conn, s.tlsConfig)
		if err != nil {
			release()
			return nil, nil, err
		}
		return c, release, nil
	}

	c := smtp.NewClient(conn)
	if err := c.Hello("localhost"); err != nil {
		c.Close()
		release()
		return nil, nil, err
	}
	if ok, _ := c.Extension("STARTTLS"); !ok {
		return c, release, nil
	}
	_ = c.Quit()
	c.Close()
	release()

	conn, release, err = s.connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	c, err = smtp.NewClientStartTLS(conn, s.tlsConfig)
	if err != nil {
		release()
		return nil, nil, err
	}
	return c, release, nil
}

// connect dials addr and ties the connection to ctx: deadlines never extend
// past ctx's and cancellation closes the socket.
func (s *SMTP) connect(ctx context.Context) (net.Conn, func(), error) {
	raw, err := s.dial(ctx, "tcp", s.addr)
	if err != nil {
		return nil, nil, err
	}
	conn := &ctxConn{Conn: raw}
	if d, ok := ctx.Deadline(); ok {
		conn.deadline = d
		_ = raw.SetDeadline(d)
	}
	stop := context.AfterFunc(ctx, func() { _ = raw.Close() })
	return conn, func() { stop() }, nil
}

// ctxConn clamps every deadline the SMTP client sets to the ctx deadline
type ctxConn struct {
	net.Conn
	deadline time.Time
}

func (c *ctxConn) clamp(t time.Time) time.Time {
	if c.deadline.IsZero() {
		return t
	}
	if t.IsZero() || t.After(c.deadline) {
		return c.deadline
	}
	return t
}

func (c *ctxConn) SetDeadline(t time.Time) error      { return c.Conn.SetDeadline(c.clamp(t)) }
func (c *ctxConn) SetReadDeadline(t time.Time) error  { return c.Conn.SetReadDeadline(c.clamp(t)) }
func (c *ctxConn) SetWriteDeadline(t time.Time) error { return c.Conn.SetWriteDeadline(c.clamp(t)) }

// ctxCause reports the ctx error for failures caused by ctx ending, including
// socket timeouts that fire on the ctx deadline just before ctx notices.
func ctxCause(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
		return context.DeadlineExceeded
	}
	return err
}

// build writes a multipart/alternative message with text and HTML parts
func (s *SMTP) build(m render.Message) ([]byte, error) {
	var h mail.Header
	h.SetDate(s.now())
	h.SetSubject(m.Subject)
	h.SetAddressList("From", []*mail.Address{{Name: s.fromName, Address: s.from}})

	to := make([]*mail.Address, 0, len(s.recipients))
	for _, r := range s.recipients {
		to = append(to, &mail.Address{Address: r})
	}
	h.SetAddressList("To", to)

	if addr := m.Submission.Payload.Email; addr != "" {
		h.SetAddressList("Reply-To", []*mail.Address{{Name: m.Submission.Payload.Name, Address: addr}})
	}
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}
	if ref := m.Submission.ReferenceID; ref != "" {
		h.Set("X-Contact-Reference", ref)
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	alt, err := mw.CreateInline()
	if err != nil {
		return nil, err
	}
	for _, part := range []struct{ ctype, body string }{
		{"text/plain", m.Text},
		{"text/html", m.HTML},
	} {
		var ph mail.InlineHeader
		ph.SetContentType(part.ctype, map[string]string{"charset": "utf-8"})
		ph.Set("Content-Transfer-Encoding", "quoted-printable")
		w, err := alt.CreatePart(ph)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(w, part.body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
