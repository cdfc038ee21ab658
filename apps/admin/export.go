package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/listing"
	"github.com/trezcool/masomo-portal/core/school"
	"github.com/trezcool/masomo-portal/services/export"
)

// export writes page `page` of collection key to file out (cli.out when empty).
func (cli *commandLine) export(key string, page int, format export.Format, out string) error {
	ctx := context.Background()

	if f, ok := cli.out.(*os.File); ok && out == "" && isTerminalFunc(int(f.Fd())) {
		return errTerminal
	}

	workspaces := listing.NewWorkspaces(school.Boards(cli.client), listing.Options{
		PageSize: cli.pageSize,
		Logger:   cli.logger,
	}, 0)
	ws := workspaces.Get("admin-cli")
	defer workspaces.Drop(ws.ID)

	board, err := ws.Board(key)
	if err != nil {
		return err
	}
	ws.LoadReferences(ctx, key)
	if err := board.FetchPage(ctx, page); err != nil {
		return errors.Wrapf(err, "fetching %s page %d", key, page)
	}

	headers, rows := board.Export()
	view := board.View()
	doc := export.Document{
		Title:    view.Title,
		Subtitle: view.Paginator.Label(),
		Headers:  headers,
		Rows:     rows,
	}

	if out == "" {
		return cli.exporter.Export(cli.out, format, doc)
	}
	f, err := createFileFunc(out)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	if err := cli.exporter.Export(f, format, doc); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing export file")
	}
	cli.logger.Info(fmt.Sprintf("%s, %s: %d rows written to %s", view.Title, view.Paginator.Label(), len(rows), out))
	return nil
}
