package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) ping() error {
	if err := cli.client.Ping(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "school API is up")
	return nil
}
