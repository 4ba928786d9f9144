package main

import (
	"time"

	"publishing-ops-api/models"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func renderRuns(runs []models.JobRunLog) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Job", "Status", "Trigger", "When", "Duration", "Error"})
	for _, run := range runs {
		duration := "-"
		if run.DurationMs != nil {
			duration = (time.Duration(*run.DurationMs) * time.Millisecond).String()
		}
		errMsg := ""
		if run.Error != nil {
			errMsg = text.Trim(*run.Error, 60)
		}
		tw.AppendRow(table.Row{run.ID, run.JobName, run.Status, run.Trigger, humanize.Time(run.CreatedAt), duration, errMsg})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return tw.Render()
}
