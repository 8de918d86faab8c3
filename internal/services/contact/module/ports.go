package module

import (
	"context"

	"contactgate/internal/adapters/siteverify"
	"contactgate/internal/core/render"
	perr "contactgate/internal/platform/errors"
	"contactgate/internal/services/contact/domain"
)

// Ports exposed by the contact module
type Ports struct {
	Submitter domain.Submitter
	Store     domain.StoreHealth
	Channel   string

	// Configured is false while required settings are missing
	Configured bool
}

// verifierPort narrows the siteverify result to the error the service needs
type verifierPort struct{ v *siteverify.Verifier }

func (p verifierPort) Verify(ctx context.Context, token, remoteIP string) error {
	_, err := p.v.Verify(ctx, token, remoteIP)
	return err
}

// unconfigured stands in when no channel could be built; the service refuses
// before reaching it, Send is only a guard
type unconfigured struct{}

func (unconfigured) Name() string { return "none" }

func (unconfigured) Send(context.Context, render.Message) error {
	return perr.New(perr.ErrorCodeMisconfigured, domain.MsgMisconfig)
}
