package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/trezcool/masomo-notify/core"
	"github.com/trezcool/masomo-notify/core/notification"
)

var (
	isTerminalFunc = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) } // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sql.DB // nil with the dummy engine
	feedSvc notification.FeedBuilder
	mailSvc core.EmailService
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                                  - run a goose command (up, down, status...)")
	_, _ = fmt.Fprintln(cli.out, "  feed -student ID|-parent ID [-at TIME] [-limit N] [-subject ID] - print a feed as JSON")
	_, _ = fmt.Fprintln(cli.out, "  digest -parent ID [-at TIME]                            - email a parent their feed")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	feedCmd := cli.newFlagSet("feed")
	feedStudent := feedCmd.String("student", "", "The id of the student whose feed to build.")
	feedParent := feedCmd.String("parent", "", "The id of the parent whose feed to build.")
	feedAt := feedCmd.String("at", "", "The RFC 3339 time to build the feed at (default: now).")
	feedLimit := feedCmd.Int("limit", 0, "The maximum number of notifications (default: the configured one).")
	feedSubject := feedCmd.String("subject", "", "Only the notifications of this subject.")

	digestCmd := cli.newFlagSet("digest")
	digestParent := digestCmd.String("parent", "", "The id of the parent to email.")
	digestAt := digestCmd.String("at", "", "The RFC 3339 time to build the feed at (default: now).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "feed":
		if err := feedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if (*feedStudent == "") == (*feedParent == "") {
			feedCmd.Usage()
			return errHelp
		}
		at, err := parseTime(*feedAt)
		if err != nil {
			return err
		}
		opts := notification.Options{Limit: *feedLimit, SubjectID: *feedSubject}
		if *feedStudent != "" {
			return cli.studentFeed(*feedStudent, at, opts)
		}
		return cli.parentFeed(*feedParent, at, opts)
	case "digest":
		if err := digestCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *digestParent == "" {
			digestCmd.Usage()
			return errHelp
		}
		at, err := parseTime(*digestAt)
		if err != nil {
			return err
		}
		return cli.digest(*digestParent, at)
	default:
		cli.printUsage()
		return errHelp
	}
}
