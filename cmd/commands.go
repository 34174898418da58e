package cmd

import (
	"github.com/google/subcommands"
)

// Commands lists every subcommand of the ledger binary
var Commands = []subcommands.Command{
	&serveCmd{},
	&migrateCmd{},
	&recomputeTotalsCmd{},
}
