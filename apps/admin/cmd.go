package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/services/export"
	"github.com/trezcool/masomo-portal/services/restapi"
)

var (
	isTerminalFunc = term.IsTerminal // mockable
	createFileFunc = func(name string) (io.WriteCloser, error) { return os.Create(name) }

	errHelp     = errors.New("help provided")
	errTerminal = errors.New("refusing to write a binary export to a terminal; use -o FILE or redirect stdout")
)

type commandLine struct {
	client   *restapi.Client
	exporter *export.Service
	logger   core.Logger
	out      io.Writer
	pageSize int
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  entities - list the school API collections")
	fmt.Println("  export -entity KEY [-page N] [-format pdf|xlsx] [-o FILE] - export one page of a collection")
	fmt.Println("  ping - check that the school API is reachable")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportEntity := exportCmd.String("entity", "", "The collection to export, eg. students (see `entities`).")
	exportPage := exportCmd.Int("page", 1, "The page to export.")
	exportFormat := exportCmd.String("format", string(export.PDF), "pdf or xlsx.")
	exportOut := exportCmd.String("o", "", "The file to write. Defaults to stdout.")

	switch args[1] {
	case "entities":
		return cli.listEntities()
	case "ping":
		return cli.ping()
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			if err == flag.ErrHelp {
				return errHelp
			}
			return err
		}
		if *exportEntity == "" {
			exportCmd.Usage()
			return errHelp
		}
		format, err := export.ParseFormat(*exportFormat)
		if err != nil {
			return err
		}
		return cli.export(*exportEntity, *exportPage, format, *exportOut)
	default:
		cli.printUsage()
		return errHelp
	}
}
