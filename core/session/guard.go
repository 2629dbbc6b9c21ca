package session

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/educonnectt/web/core"
)

// GuardState tracks the access check for one protected screen instance.
// Authorized and Unauthorized are both terminal.
type GuardState string

const (
	StateChecking     GuardState = "checking"
	StateAuthorized   GuardState = "authorized"
	StateUnauthorized GuardState = "unauthorized"
)

const defaultVerifyTimeout = 10 * time.Second

// Verifier checks a bearer credential against the external auth backend.
// Only success vs not-success matters; the failure reason is not interpreted.
type Verifier interface {
	Verify(ctx context.Context, ns Namespace, token string) error
}

type (
	GuardDeps struct {
		Store    core.Store
		Verifier Verifier // nil disables the round trip (presence-only check)
		Logger   core.Logger
		Timeout  time.Duration // bound on the verification round trip
	}

	// Guard gates rendering of a protected screen behind possession of a
	// valid, role-appropriate credential. The default is "not authorized":
	// every failure path, network errors included, denies and redirects.
	// Each protected screen runs its own Guard; there is no cross-screen
	// "already verified" cache.
	Guard struct {
		ns        Namespace
		visitorID string
		deps      GuardDeps
		state     GuardState
	}

	GuardResult struct {
		State GuardState
		// Redirect is the role's login entry point, set on denial.
		Redirect string
	}
)

func NewGuard(ns Namespace, visitorID string, deps GuardDeps) *Guard {
	if deps.Timeout <= 0 {
		deps.Timeout = defaultVerifyTimeout
	}
	return &Guard{
		ns:        ns,
		visitorID: visitorID,
		deps:      deps,
		state:     StateChecking,
	}
}

func (g *Guard) State() GuardState { return g.state }

// Check runs the access check to completion. Protected content must not be
// produced until it returns StateAuthorized.
func (g *Guard) Check(ctx context.Context) GuardResult {
	g.state = StateChecking

	token, err := g.deps.Store.Get(ctx, g.visitorID, g.ns.TokenKey())
	if err != nil {
		// missing credential is expected, not an error
		if errors.Cause(err) != core.ErrKeyNotFound {
			g.logError("session: reading credential", err)
		}
		return g.deny(ctx, false)
	}
	if token == "" || tokenExpired(token) {
		g.logInfo("session: stale %s credential, forcing re-login", g.ns.Name())
		return g.deny(ctx, true)
	}

	if g.deps.Verifier != nil {
		vctx, cancel := context.WithTimeout(ctx, g.deps.Timeout)
		defer cancel()
		if err := g.deps.Verifier.Verify(vctx, g.ns, token); err != nil {
			// any failure, timeouts included, is treated as rejection
			g.logInfo("session: %s verification failed: %v", g.ns.Name(), err)
			return g.deny(ctx, true)
		}
	}

	g.state = StateAuthorized
	return GuardResult{State: StateAuthorized}
}

// deny transitions to Unauthorized; entering it redirects to login.
// When clear is set the whole namespace is wiped, never part of it.
func (g *Guard) deny(ctx context.Context, clear bool) GuardResult {
	if clear {
		if err := g.deps.Store.Delete(ctx, g.visitorID, g.ns.Keys()...); err != nil {
			g.logError("session: clearing "+g.ns.Name()+" namespace", err)
		}
	}
	g.state = StateUnauthorized
	return GuardResult{State: StateUnauthorized, Redirect: g.ns.LoginPath()}
}

func (g *Guard) logError(msg string, err error) {
	if g.deps.Logger != nil {
		g.deps.Logger.Error(msg, errors.Wrap(err, msg))
	}
}

func (g *Guard) logInfo(format string, args ...interface{}) {
	if g.deps.Logger != nil {
		g.deps.Logger.Info(fmt.Sprintf(format, args...))
	}
}
