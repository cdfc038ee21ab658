package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/masomo-portal/core/school"
)

func (cli *commandLine) listEntities() error {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tPATH\tSTATUS TOGGLE")
	for _, m := range school.Entities() {
		toggle := "-"
		if m.Toggleable {
			toggle = "yes"
			if m.ConfirmToggle {
				toggle = "yes (confirmed)"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Key, m.Plural, m.Path, toggle)
	}
	return w.Flush()
}
