package main

import (
	"context"
	"fmt"

	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/session"
)

// login obtains an admin credential from the backend and attaches it to the
// given visitor, letting support staff act on a user's behalf. Tokens that
// carry an expiry claim lapse from storage on their own.
func (cli *commandLine) login(email, pwd, visitorID string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	token, err := cli.backend.AdminLogin(ctx, email, pwd)
	if err != nil {
		return err
	}

	ns := session.AdminNamespace
	if exp, ok := session.TokenExpiry(token); ok {
		err = cli.store.SetExpiring(ctx, visitorID, ns.TokenKey(), token, exp)
	} else {
		err = cli.store.Set(ctx, visitorID, ns.TokenKey(), token)
	}
	if err != nil {
		return err
	}

	fmt.Printf("admin credential stored for visitor %s\n", visitorID)
	return nil
}
