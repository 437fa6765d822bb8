package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"qaueue/internal/engine"
	"qaueue/internal/queue"
)

type statusView struct {
	Backend     string         `json:"backend" yaml:"backend"`
	Location    string         `json:"location" yaml:"location"`
	Reachable   bool           `json:"reachable" yaml:"reachable"`
	Writable    bool           `json:"writable" yaml:"writable"`
	IntegrityOK bool           `json:"integrity_ok" yaml:"integrity_ok"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
	Items       int            `json:"items" yaml:"items"`
	QueueLength int            `json:"queue_length" yaml:"queue_length"`
	ByStatus    map[string]int `json:"by_status" yaml:"by_status"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store health and item counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := ctx.outputFormat()
			cfg, _ := ctx.ensureConfig()
			return ctx.withEngine(cmd, func(eng *engine.Engine) error {
				var (
					health queue.Health
					stats  queue.Stats
				)
				err := ctx.retry(cmd.Context(), "status", func() error {
					var statusErr error
					if health, statusErr = eng.Health(cmd.Context()); statusErr != nil {
						return statusErr
					}
					stats, statusErr = eng.Stats(cmd.Context())
					return statusErr
				})
				if err != nil {
					return err
				}

				view := statusView{
					Backend:     health.Backend,
					Location:    health.Location,
					Reachable:   health.Reachable,
					Writable:    health.Writable,
					IntegrityOK: health.IntegrityOK,
					Error:       health.Error,
					Items:       stats.Total,
					QueueLength: stats.Queued,
					ByStatus:    make(map[string]int, len(stats.ByStatus)),
				}
				for status, count := range stats.ByStatus {
					view.ByStatus[string(status)] = count
				}
				if ok, err := writeStructured(cmd, format, view); ok {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				lines := renderSectionHeader("Store", colorize)
				lines = append(lines,
					renderStatusLine("Backend", statusInfo, health.Backend, colorize),
					renderStatusLine("Location", statusInfo, health.Location, colorize),
					renderStatusLine("Reachable", boolKind(health.Reachable), yesNo(health.Reachable), colorize),
					renderStatusLine("Writable", boolKind(health.Writable), yesNo(health.Writable), colorize),
					renderStatusLine("Integrity", boolKind(health.IntegrityOK), yesNo(health.IntegrityOK), colorize),
				)
				if health.Error != "" {
					lines = append(lines, renderStatusLine("Error", statusError, health.Error, colorize))
				}
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Queue", colorize)...)
				lines = append(lines,
					renderStatusLine("Items", statusInfo, strconv.Itoa(stats.Total), colorize),
					renderStatusLine("Queued", statusInfo, strconv.Itoa(stats.Queued), colorize),
				)
				fmt.Fprintln(out, strings.Join(lines, "\n"))

				rows := buildStatusRows(view.ByStatus, func(status string) string {
					return colorStatus(cfg, status, colorize)
				})
				if len(rows) > 0 {
					fmt.Fprintln(out)
					fmt.Fprint(out, renderCountTable(rows, stats.Total))
				}
				return nil
			})
		},
	}
}

// buildStatusRows orders statuses by descending count, then name.
func buildStatusRows(byStatus map[string]int, label func(string) string) [][]string {
	statuses := make([]string, 0, len(byStatus))
	for status, count := range byStatus {
		if count > 0 {
			statuses = append(statuses, status)
		}
	}
	sort.Slice(statuses, func(i, j int) bool {
		if byStatus[statuses[i]] != byStatus[statuses[j]] {
			return byStatus[statuses[i]] > byStatus[statuses[j]]
		}
		return statuses[i] < statuses[j]
	})
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		rows = append(rows, []string{label(status), strconv.Itoa(byStatus[status])})
	}
	return rows
}
