package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"qaueue/internal/queue"
)

// maxNameWidth caps the name column of the queue listing; URLs are left whole
// so they stay clickable.
const maxNameWidth = 48

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

// renderQueueTable lists items head first with their queue position.
func renderQueueTable(items []*queue.Item, statusText func(queue.Status) string) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"#", "Name", "Status", "Type", "URL"})
	for position, item := range items {
		tw.AppendRow(table.Row{
			strconv.Itoa(position),
			displayName(item),
			statusText(item.Status),
			string(item.Type),
			item.URL,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 2, WidthMax: maxNameWidth, WidthMaxEnforcer: text.Trim},
	})
	return tw.Render() + "\n"
}

// renderFieldTable prints label/value pairs for a single item.
func renderFieldTable(fields [][2]string) string {
	tw := newTableWriter()
	for _, field := range fields {
		tw.AppendRow(table.Row{field[0], field[1]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})
	return tw.Render() + "\n"
}

// renderCountTable prints status counts with a total footer.
func renderCountTable(rows [][]string, total int) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Status", "Count"})
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	tw.AppendFooter(table.Row{"Total", strconv.Itoa(total)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render() + "\n"
}
