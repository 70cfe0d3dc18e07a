package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-notify/core/notification"
)

var nowFunc = time.Now // mockable

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return nowFunc(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, errors.Wrapf(err, "parsing -at %q", s)
}

// printJSON writes v to the output, indented when it is a terminal.
func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	if isTerminalFunc() {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func (cli *commandLine) studentFeed(id string, at time.Time, opts notification.Options) error {
	feed, err := cli.feedSvc.BuildStudentFeed(context.Background(), id, at, opts)
	if err != nil {
		return errors.Wrap(err, "building student feed")
	}
	return cli.printJSON(feed)
}

func (cli *commandLine) parentFeed(id string, at time.Time, opts notification.Options) error {
	feed, err := cli.feedSvc.BuildParentFeed(context.Background(), id, at, opts)
	if err != nil {
		return errors.Wrap(err, "building parent feed")
	}
	return cli.printJSON(feed)
}

func (cli *commandLine) digest(parentID string, at time.Time) error {
	msg, feed, err := cli.feedSvc.ParentDigest(context.Background(), parentID, at, notification.Options{})
	if err != nil {
		return errors.Wrap(err, "building parent digest")
	}
	cli.mailSvc.SendMessages(msg)
	if w, ok := cli.mailSvc.(interface{ Wait() error }); ok {
		if err = w.Wait(); err != nil {
			return errors.Wrap(err, "sending digest")
		}
	}
	_, err = fmt.Fprintf(cli.out, "digest of %d notifications sent to %s\n", len(feed.Items), msg.To[0].String())
	return err
}
