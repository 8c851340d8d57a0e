package main

import (
	"fmt"
	"io"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/logs"
)

const eventsPattern = "scribe-*.events"

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var statusOnly bool
	var dir string

	cmd := &cobra.Command{
		Use:         "logs",
		Short:       "Show events from the most recent capture run",
		Annotations: skipConfigAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			logDir, err := ctx.pathOrConfig(dir, func(c *config.Config) string { return c.Paths.LogDir })
			if err != nil {
				return err
			}
			path, err := logs.Latest(logDir, eventsPattern)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			emit := func(evt logging.LogEvent) {
				if statusOnly && evt.Component != logging.StatusComponent {
					return
				}
				fmt.Fprintln(out, formatEvent(evt))
			}

			events, offset, err := logs.ReadEvents(path, 0)
			if err != nil {
				return err
			}
			if statusOnly {
				events = filterStatus(events)
			}
			if lines > 0 && len(events) > lines {
				events = events[len(events)-lines:]
			}
			for _, evt := range events {
				emit(evt)
			}
			if !follow {
				return nil
			}

			followCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return logs.Follow(followCtx, path, offset, 0, emit)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of events to show (0 for all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new events")
	cmd.Flags().BoolVar(&statusOnly, "status", false, "Only show the status lines printed during the run")
	cmd.Flags().StringVar(&dir, "dir", "", "Log directory (defaults to paths.log_dir)")
	return cmd
}

func filterStatus(events []logging.LogEvent) []logging.LogEvent {
	kept := events[:0]
	for _, evt := range events {
		if evt.Component == logging.StatusComponent {
			kept = append(kept, evt)
		}
	}
	return kept
}

func formatEvent(evt logging.LogEvent) string {
	var b strings.Builder
	b.WriteString(evt.Timestamp.Local().Format(time.DateTime))
	b.WriteByte(' ')
	b.WriteString(fmt.Sprintf("%-5s", strings.ToUpper(evt.Level)))
	if evt.Component != "" && evt.Component != logging.StatusComponent {
		b.WriteString(" [" + evt.Component + "]")
	}
	b.WriteByte(' ')
	b.WriteString(evt.Message)
	writeFields(&b, evt.Fields)
	return b.String()
}

func writeFields(w io.StringWriter, fields map[string]string) {
	if len(fields) == 0 {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		_, _ = w.WriteString(" " + k + "=" + fields[k])
	}
}
