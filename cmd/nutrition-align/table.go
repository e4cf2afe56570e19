// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

// renderTable draws rows under headers. Columns listed in right are
// right-aligned.
func renderTable(headers []string, rows [][]string, right ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	var configs []table.ColumnConfig
	for _, n := range right {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func resultRow(r types.AlignmentResult) []string {
	candidate, protein, fat, carbs := "-", "-", "-", "-"
	if r.Candidate != nil {
		candidate = r.Candidate.Name
	}
	if r.Macros != nil {
		protein = fmt.Sprintf("%.1f", r.Macros.ProteinG)
		fat = fmt.Sprintf("%.1f", r.Macros.FatG)
		carbs = fmt.Sprintf("%.1f", r.Macros.CarbsG)
	}
	status := string(r.Status)
	if r.Reason != "" {
		status += " (" + r.Reason + ")"
	}
	return []string{
		r.Item.Name,
		fmt.Sprintf("%.0f", r.MassG),
		status,
		string(r.Stage),
		candidate,
		fmt.Sprintf("%.2f", r.Score),
		fmt.Sprintf("%.0f", r.CaloriesKcal),
		protein,
		fat,
		carbs,
	}
}

var resultHeaders = []string{"Item", "Mass (g)", "Status", "Stage", "Candidate", "Score", "kcal", "Protein", "Fat", "Carbs"}

func renderResults(results []types.AlignmentResult) string {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = resultRow(r)
	}
	return renderTable(resultHeaders, rows, 2, 6, 7, 8, 9, 10)
}

func renderAttempts(t types.TelemetryRecord) string {
	var rows [][]string
	for _, a := range t.Attempts {
		outcome := "no match"
		switch {
		case a.Skipped:
			outcome = "skipped: " + a.SkipReason
		case a.Accepted:
			outcome = "accepted " + a.CandidateID
		}
		note := a.Note
		if len(a.TopRejected) > 0 {
			top := a.TopRejected[0]
			if note != "" {
				note += "; "
			}
			note += fmt.Sprintf("best rejected %s %.2f %s", top.ID, top.Score.Total, top.Reason)
		}
		rows = append(rows, []string{string(a.Stage), fmt.Sprint(a.PoolSize), outcome, note})
	}
	return renderTable([]string{"Stage", "Pool", "Outcome", "Note"}, rows, 2)
}
