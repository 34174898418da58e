package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"fundledger/database"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply, roll back or inspect schema migrations" }
func (*migrateCmd) Usage() string {
	return `fundledger migrate up|down [steps]|status

  up      apply all pending migrations
  down    roll back the given number of migrations (default 1)
  status  print the applied schema version
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprint(os.Stderr, (&migrateCmd{}).Usage())
		return subcommands.ExitUsageError
	}

	url := loadConfig().GetDatabaseURL()

	var err error
	switch f.Arg(0) {
	case "up":
		err = database.MigrateUp(url)
	case "down":
		steps := 1
		if f.NArg() > 1 {
			steps, err = strconv.Atoi(f.Arg(1))
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid step count %q\n", f.Arg(1))
				return subcommands.ExitUsageError
			}
		}
		err = database.MigrateDown(url, steps)
	case "status":
		var status *database.MigrationStatus
		status, err = database.MigrateStatus(url)
		if err == nil {
			if !status.Applied {
				fmt.Println("No migrations applied")
			} else {
				fmt.Printf("Version: %d, dirty: %t\n", status.Version, status.Dirty)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown migration command: %s\n", f.Arg(0))
		return subcommands.ExitUsageError
	}

	if err != nil {
		log.WithError(err).Error("Migration failed")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
