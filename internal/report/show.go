package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sinclairtarget/git-tagstats/internal/format"
	"github.com/sinclairtarget/git-tagstats/internal/pretty"
	"github.com/sinclairtarget/git-tagstats/internal/tally"
)

// Max commits passed to a single git show.
const summaryBatchSize = 100

const summaryWidth = 72

var tableHeader = table.Row{
	"Version",
	"Files Changed",
	"Insertions",
	"Deletions",
	"# Commits",
	"# Contrib",
}

var csvHeader = []string{
	"group",
	"tag",
	"files",
	"insertions",
	"deletions",
	"commits",
	"contributors",
}

type row struct {
	tag   string
	stats *tally.TagStats
}

// Tags after the first that g recorded commits for, in order.
func (r *Report) rows(g *tally.Group) []row {
	if len(r.tags) < 2 {
		return nil
	}

	rows := []row{}
	for _, tag := range r.tags[1:] {
		stats, ok := g.Stats(tag)
		if !ok || stats.IsEmpty() {
			continue
		}

		rows = append(rows, row{tag: tag, stats: stats})
	}

	return rows
}

// Writes a table per group with one row per tag.
func (r *Report) ShowTable(w io.Writer) error {
	if !r.generated {
		return nil
	}

	for _, g := range r.groups {
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.Style().Format.Header = text.FormatDefault
		tbl.AppendHeader(tableHeader)

		configs := []table.ColumnConfig{}
		for n := 2; n <= len(tableHeader); n++ {
			configs = append(configs, table.ColumnConfig{
				Number:      n,
				Align:       text.AlignRight,
				AlignHeader: text.AlignRight,
			})
		}
		tbl.SetColumnConfigs(configs)

		for _, row := range r.rows(g) {
			tbl.AppendRow(table.Row{
				row.tag,
				format.Number(row.stats.FileCount()),
				format.Number(row.stats.Totals.Insertions),
				format.Number(row.stats.Totals.Deletions),
				format.Number(row.stats.Totals.Commits),
				format.Number(row.stats.AuthorCount()),
			})
		}

		_, err := fmt.Fprintf(w, "%s:\n%s\n", g.Name, tbl.Render())
		if err != nil {
			return err
		}
	}

	return nil
}

// Same data as ShowTable, one CSV record per group and tag.
func (r *Report) ShowTableCSV(w io.Writer) error {
	if !r.generated {
		return nil
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, g := range r.groups {
		for _, row := range r.rows(g) {
			record := []string{
				g.Name,
				row.tag,
				strconv.Itoa(row.stats.FileCount()),
				strconv.Itoa(row.stats.Totals.Insertions),
				strconv.Itoa(row.stats.Totals.Deletions),
				strconv.Itoa(row.stats.Totals.Commits),
				strconv.Itoa(row.stats.AuthorCount()),
			}

			if err := cw.Write(record); err != nil {
				return fmt.Errorf("error writing CSV record: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("error flushing CSV writer: %w", err)
	}

	return nil
}

// Lists, per group and tag, each commit with its shortstat, then the files
// touched and the authors involved.
func (r *Report) ShowCommits(ctx context.Context, w io.Writer) error {
	if !r.generated {
		return nil
	}

	for _, g := range r.groups {
		for _, row := range r.rows(g) {
			ids, files, authors, err := g.Commits(row.tag)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "%s %s:\n", pretty.Bold(g.Name), pretty.Bold(row.tag))

			for batch := range slices.Chunk(ids, summaryBatchSize) {
				summaries, err := r.source.Summaries(ctx, batch)
				if err != nil {
					return err
				}

				for _, s := range summaries {
					fmt.Fprintf(w, "\t%s\n", format.Abbrev(s.String(), summaryWidth))
					if s.ShortStat != "" {
						fmt.Fprintf(w, "\t\t%s\n", pretty.Dim(s.ShortStat))
					}
				}
			}

			fmt.Fprintf(w, "\t%s\n", format.Plural(len(files), "file"))
			for _, path := range slices.Sorted(maps.Keys(files)) {
				stats := files[path]
				fmt.Fprintf(
					w,
					"\t\t%s %s %s (%s)\n",
					path,
					pretty.Green("+"+format.Number(stats.Insertions)),
					pretty.Red("-"+format.Number(stats.Deletions)),
					format.Plural(stats.Touches, "commit"),
				)
			}

			fmt.Fprintf(w, "\t%s\n", format.Plural(len(authors), "author"))
			for _, a := range tally.RankAuthors(authors) {
				_, err = fmt.Fprintf(
					w,
					"\t\t%s %s\n",
					format.GitEmail(a.Author),
					format.Plural(a.Commits, "commit"),
				)
				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}
