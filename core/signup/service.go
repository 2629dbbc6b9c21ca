package signup

import (
	"context"

	"github.com/pkg/errors"

	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/registration"
	"github.com/educonnectt/web/core/session"
)

// Registrar creates the account on the external backend.
type Registrar interface {
	Signup(ctx context.Context, req Request) (Credentials, error)
}

type Service struct {
	store     core.Store
	registrar Registrar
	logger    core.Logger
}

func NewService(store core.Store, registrar Registrar, logger core.Logger) *Service {
	return &Service{store: store, registrar: registrar, logger: logger}
}

// RecoverDraft returns the draft the signup screen should render. The
// persisted copy is authoritative here: it is what survives when in-memory
// navigation state is lost on a reload.
func (svc *Service) RecoverDraft(ctx context.Context, visitorID string) (registration.Draft, error) {
	return registration.LoadDraft(ctx, svc.store, visitorID)
}

// Complete consumes the registration draft and creates the account. The
// in-memory draft handed over by navigation is preferred; storage is the
// fallback. On success the returned credential lands in the general-user
// namespace and the draft is cleared; on failure the draft stays put so the
// user can retry.
func (svc *Service) Complete(
	ctx context.Context,
	visitorID, rawRole string,
	data NewSignup,
	navDraft *registration.Draft,
) (Credentials, error) {
	if err := data.Validate(); err != nil {
		return Credentials{}, err
	}

	draft := navDraft
	if draft == nil {
		loaded, err := registration.LoadDraft(ctx, svc.store, visitorID)
		if err != nil {
			return Credentials{}, err
		}
		draft = &loaded
	}

	creds, err := svc.registrar.Signup(ctx, newRequest(data, core.CleanString(rawRole), *draft))
	if err != nil {
		return Credentials{}, errors.Wrap(err, "creating account")
	}

	ns := session.GeneralNamespace
	if err := svc.store.Set(ctx, visitorID, ns.TokenKey(), creds.Token); err != nil {
		return Credentials{}, errors.Wrap(err, "storing credential")
	}
	if creds.UserID != "" {
		if err := svc.store.Set(ctx, visitorID, session.UserIDKey, creds.UserID); err != nil {
			return Credentials{}, errors.Wrap(err, "storing user id")
		}
	}

	if err := registration.ClearDraft(ctx, svc.store, visitorID); err != nil {
		// the account exists; a dangling draft is only noise
		if svc.logger != nil {
			svc.logger.Warn("signup: clearing consumed draft", err)
		}
	}
	return creds, nil
}
