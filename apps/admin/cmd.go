package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/educonnectt/web/core"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type (
	// credentialStore is the durable visitor-state store plus the
	// maintenance hooks only the CLI uses.
	credentialStore interface {
		core.Store
		DB() *sql.DB
		SetExpiring(ctx context.Context, visitorID, key, value string, expiresAt time.Time) error
		PurgeExpired(ctx context.Context) (int64, error)
	}

	adminAuthenticator interface {
		AdminLogin(ctx context.Context, email, password string) (string, error)
	}

	commandLine struct {
		conf    *core.Config
		store   credentialStore
		backend adminAuthenticator
	}
)

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (goose commands)")
	fmt.Println("  login -email EMAIL -visitor VISITOR_ID - obtain an admin credential for a visitor. The password will be prompted next.")
	fmt.Println("  clearsessions -visitor VISITOR_ID - wipe all of a visitor's stored state")
	fmt.Println("  purgesessions - drop every expired credential")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginEmail := loginCmd.String("email", "", "The administrator's email. The password will be prompted next.")
	loginVisitor := loginCmd.String("visitor", "", "The visitor ID to attach the credential to.")

	clearCmd := flag.NewFlagSet("clearsessions", flag.ExitOnError)
	clearVisitor := clearCmd.String("visitor", "", "The visitor ID whose state should be wiped.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" || *loginVisitor == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(*loginEmail, string(pwd), *loginVisitor)
	case "clearsessions":
		if err := clearCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *clearVisitor == "" {
			clearCmd.Usage()
			return errHelp
		}
		return cli.clearSessions(*clearVisitor)
	case "purgesessions":
		return cli.purgeSessions()
	default:
		cli.printUsage()
		return errHelp
	}
}
