package main

import (
	"context"
	"fmt"

	"github.com/educonnectt/web/core/registration"
	"github.com/educonnectt/web/core/session"
)

// clearSessions wipes everything stored for one visitor: all three credential
// namespaces plus any in-progress registration draft.
func (cli *commandLine) clearSessions(visitorID string) error {
	keys := make([]string, 0, 8)
	for _, ns := range []session.Namespace{session.GeneralNamespace, session.AdminNamespace, session.QAONamespace} {
		keys = append(keys, ns.Keys()...)
	}
	keys = append(keys, registration.DraftKey)

	if err := cli.store.Delete(context.Background(), visitorID, keys...); err != nil {
		return err
	}
	fmt.Printf("cleared stored state for visitor %s\n", visitorID)
	return nil
}

func (cli *commandLine) purgeSessions() error {
	n, err := cli.store.PurgeExpired(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("purged %d expired entries\n", n)
	return nil
}
