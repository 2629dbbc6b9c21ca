package main

import (
	"log"
	"os"

	"github.com/educonnectt/web/core"
	backendsvc "github.com/educonnectt/web/services/backend"
	pgstore "github.com/educonnectt/web/storage/keyval/postgres"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	store, err := pgstore.Open(conf)
	errAndDie(err)
	defer store.Close()
	errAndDie(store.DB().Ping())

	// start CLI
	cli := commandLine{
		conf:    conf,
		store:   store,
		backend: backendsvc.NewClient(conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
