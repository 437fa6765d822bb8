package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"qaueue/internal/engine"
	"qaueue/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a pull request or story to the end of the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := ctx.outputFormat()
			return ctx.withEngine(cmd, func(eng *engine.Engine) error {
				item, position, err := eng.AddItem(cmd.Context(), args[0], name)
				if err != nil {
					return err
				}
				if ok, err := writeStructured(cmd, format, newItemView(item, position, true)); ok {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s at position %d (%s)\n", displayName(item), position, item.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (derived from the URL when omitted)")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List queued items in priority order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := ctx.outputFormat()
			cfg, _ := ctx.ensureConfig()
			return ctx.withEngine(cmd, func(eng *engine.Engine) error {
				var items []*queue.Item
				err := ctx.retry(cmd.Context(), "list pending", func() error {
					var listErr error
					items, listErr = eng.ListPending(cmd.Context())
					return listErr
				})
				if err != nil {
					return err
				}

				views := make([]itemView, 0, len(items))
				for i, item := range items {
					views = append(views, newItemView(item, i, true))
				}
				if ok, err := writeStructured(cmd, format, views); ok {
					return err
				}

				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				colorize := shouldColorize(out)
				fmt.Fprint(out, renderQueueTable(items, func(status queue.Status) string {
					return colorStatus(cfg, string(status), colorize)
				}))
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "show <ref>",
		Short:   "Show one item by queue index, URL, or id",
		Example: "  qaueue show 0\n  qaueue show -- -1\n  qaueue show https://github.com/org/repo/pull/12",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := ctx.outputFormat()
			cfg, _ := ctx.ensureConfig()
			return ctx.withEngine(cmd, func(eng *engine.Engine) error {
				var (
					item     *queue.Item
					position int
					queued   bool
				)
				err := ctx.retry(cmd.Context(), "show item", func() error {
					var getErr error
					item, getErr = eng.Get(cmd.Context(), args[0])
					if getErr != nil {
						return getErr
					}
					position, queued, getErr = eng.Position(cmd.Context(), item.ID)
					return getErr
				})
				if err != nil {
					return err
				}
				view := newItemView(item, position, queued)
				if ok, err := writeStructured(cmd, format, view); ok {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				positionText := "not queued"
				if queued {
					positionText = strconv.Itoa(position)
				}
				releasedText := "-"
				if item.ReleasedAt != nil {
					releasedText = item.ReleasedAt.Local().Format("2006-01-02 15:04:05")
				}
				fmt.Fprint(out, renderFieldTable([][2]string{
					{"Name", displayName(item)},
					{"ID", item.ID},
					{"URL", item.URL},
					{"Type", string(item.Type)},
					{"Status", colorStatus(cfg, string(item.Status), colorize)},
					{"Position", positionText},
					{"Created", item.CreatedAt.Local().Format("2006-01-02 15:04:05")},
					{"Updated", item.UpdatedAt.Local().Format("2006-01-02 15:04:05")},
					{"Released", releasedText},
				}))
				return nil
			})
		},
	}
}

func newPrioritizeCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "prioritize <ref> <index>",
		Aliases: []string{"move"},
		Short:   "Move a queued item to a new position",
		Long: "Move a queued item to a new position. Index 0 is the front of the queue and\n" +
			"negative indices count from the back. Place negative values after -- so they\n" +
			"are not read as flags.",
		Example: "  qaueue prioritize 3 0\n  qaueue prioritize --force -- 0 -1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil {
				return fmt.Errorf("%w: index %q is not an integer", queue.ErrOutOfRangePriority, args[1])
			}
			format, _ := ctx.outputFormat()
			return ctx.withEngine(cmd, func(eng *engine.Engine) error {
				item, err := eng.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := eng.Reprioritize(cmd.Context(), item.ID, index, force); err != nil {
					return err
				}
				position, queued, err := eng.Position(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				if ok, err := writeStructured(cmd, format, newItemView(item, position, queued)); ok {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to position %d\n", displayName(item), position)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Move the item even if its status is not queued")
	return cmd
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "update <ref> <status>",
		Aliases: []string{"status-set"},
		Short:   "Set an item's status; \"released\" removes it from the queue",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := ctx.outputFormat()
			return ctx.withEngine(cmd, func(eng *engine.Engine) error {
				item, err := eng.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				updated, err := eng.SetStatus(cmd.Context(), item.ID, args[1])
				if err != nil {
					return err
				}
				position, queued, err := eng.Position(cmd.Context(), updated.ID)
				if err != nil {
					return err
				}
				if ok, err := writeStructured(cmd, format, newItemView(updated, position, queued)); ok {
					return err
				}
				out := cmd.OutOrStdout()
				if queue.IsCompletedStatus(updated.Status) {
					fmt.Fprintf(out, "Released %s; removed from the queue\n", displayName(updated))
					return nil
				}
				fmt.Fprintf(out, "Set %s to %s\n", displayName(updated), updated.Status)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <ref>",
		Aliases: []string{"rm"},
		Short:   "Delete an item and drop it from the queue",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := ctx.outputFormat()
			return ctx.withEngine(cmd, func(eng *engine.Engine) error {
				item, err := eng.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := eng.RemoveItem(cmd.Context(), item.ID); err != nil {
					return err
				}
				if ok, err := writeStructured(cmd, format, map[string]string{"removed": item.ID}); ok {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", displayName(item))
				return nil
			})
		},
	}
}

func displayName(item *queue.Item) string {
	if name := strings.TrimSpace(item.Name); name != "" {
		return name
	}
	return item.URL
}
