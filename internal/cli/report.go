package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbundle/pkg/classpath"
	"github.com/matzehuels/stackbundle/pkg/errors"
	pkgio "github.com/matzehuels/stackbundle/pkg/io"
	"github.com/matzehuels/stackbundle/pkg/report"
)

const formatTable = "table"

// reportCommand creates the report command.
func (c *CLI) reportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect stored resolution reports",
	}

	cmd.AddCommand(c.reportShowCommand())
	cmd.AddCommand(c.reportListCommand())

	return cmd
}

func (c *CLI) reportShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store report.Store) error {
				r, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if format == formatTable {
					writeReportTable(cmd.OutOrStdout(), r)
					return nil
				}
				return pkgio.WriteReport(r, cmd.OutOrStdout(), format)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json or yaml")
	return cmd
}

func (c *CLI) reportListCommand() *cobra.Command {
	var (
		module string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store report.Store) error {
				reports, err := store.List(cmd.Context(), module, limit)
				if err != nil {
					return err
				}
				if len(reports) == 0 {
					printInfo("No reports found")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), reportListTable(reports, time.Now()))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&module, "module", "m", "", "only reports for this module")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of reports (0 for all)")
	return cmd
}

// withStore opens the configured report store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(report.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "reports are disabled (store backend %q)", cfg.Store.Backend)
	}
	defer store.Close(context.WithoutCancel(ctx))
	return fn(store)
}

// writeReportTable prints a report's summary and its entries.
func writeReportTable(w io.Writer, r *report.Report) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	kv := func(k, v string) {
		fmt.Fprintln(w, keyStyle.Render(k)+" "+StyleValue.Render(v))
	}
	kv("Report", r.ID)
	kv("Module", r.ModuleID)
	if r.Root != "" {
		kv("Root", r.Root)
	}
	kv("Created", r.CreatedAt.Format(time.RFC3339))
	kv("Duration", r.Duration.String())
	if len(r.Applied) > 0 {
		kv("Extensions", strings.Join(r.Applied, " "))
	}

	var rows [][]string
	add := func(bucket string, entries []report.Entry) {
		for _, e := range entries {
			rows = append(rows, []string{bucket, e.Coordinate, e.File})
		}
	}
	add("shared", r.Shared)
	add("nonshared", r.NonShared)
	add("optional", r.Optional)
	add("excluded", r.Excluded)
	if len(rows) > 0 {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("Bucket", "Coordinate", "File").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == -1 {
					return styleHeader
				}
				if col == 0 && row < len(rows) {
					return lipgloss.NewStyle().Foreground(bucketColor[classpath.Bucket(rows[row][0])])
				}
				return lipgloss.NewStyle()
			})
		fmt.Fprintln(w, t.Render())
	}

	for _, e := range r.Embedded {
		line := e.Segment + " " + iconArrow + " " + e.Location
		if e.SHA256 != "" {
			line += "  sha256:" + e.SHA256[:min(12, len(e.SHA256))]
		}
		fmt.Fprintln(w, "  "+StyleDim.Render(line))
	}
}

// reportListTable renders one row per report.
func reportListTable(reports []*report.Report, now time.Time) string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			r.ID,
			r.ModuleID,
			formatRelativeTime(r.CreatedAt, now),
			fmt.Sprint(len(r.Shared)),
			fmt.Sprint(len(r.NonShared)),
			fmt.Sprint(len(r.Embedded)),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Module", "Created", "Shared", "NonShared", "Embedded").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col >= 3 {
				return StyleNumber
			}
			if col == 2 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
