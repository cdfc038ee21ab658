package main

import (
	"log"
	"os"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/services/export"
	logsvc "github.com/trezcool/masomo-portal/services/logger"
	"github.com/trezcool/masomo-portal/services/restapi"
)

var logger *log.Logger

func main() {
	// stdout may carry an export: log to stderr
	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// start CLI
	cli := commandLine{
		client: restapi.New(restapi.Options{
			BaseURL: conf.API.BaseURL,
			Token:   conf.API.Token,
			Timeout: conf.API.Timeout,
		}),
		exporter: export.NewService(),
		logger:   logsvc.NewStdLogger(logger),
		out:      os.Stdout,
		pageSize: conf.API.PageSize,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
