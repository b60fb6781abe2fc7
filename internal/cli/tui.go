package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stackbundle/pkg/classpath"
	"github.com/matzehuels/stackbundle/pkg/deps"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	tabStyle     = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	tabActive    = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Padding(0, 1).Underline(true)
	detailStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// browserTabs are the bucket views, BucketNone meaning all buckets.
var browserTabs = []classpath.Bucket{
	classpath.BucketNone,
	classpath.BucketShared,
	classpath.BucketNonShared,
	classpath.BucketOptional,
	classpath.BucketExcluded,
}

// =============================================================================
// BucketBrowserModel - Interactive view of a resolution result
// =============================================================================

// bucketRow is one classified dependency.
type bucketRow struct {
	Bucket  classpath.Bucket
	Node    *deps.Node
	Segment string // Bundle-ClassPath entry, if embedded
}

// BucketBrowserModel is the bubbletea model for browsing classified
// dependencies bucket by bucket.
type BucketBrowserModel struct {
	Rows   []bucketRow
	Tab    int
	Cursor int
	Offset int
	Height int
	Detail bool
}

// NewBucketBrowserModel creates a browser over a resolution state.
func NewBucketBrowserModel(s *classpath.State) BucketBrowserModel {
	m := BucketBrowserModel{Height: 15}
	if s == nil {
		return m
	}

	segments := make(map[string]string, len(s.Embedded))
	for seg, loc := range s.Embedded {
		segments[loc] = seg
	}
	add := func(b classpath.Bucket, nodes []*deps.Node) {
		for _, n := range nodes {
			row := bucketRow{Bucket: b, Node: n}
			if loc := n.Location(); loc != "" {
				row.Segment = segments[loc]
			}
			m.Rows = append(m.Rows, row)
		}
	}
	add(classpath.BucketShared, s.Shared)
	add(classpath.BucketNonShared, s.NonShared)
	add(classpath.BucketOptional, s.Optional)
	add(classpath.BucketExcluded, s.Excluded)
	return m
}

// visible returns the rows of the current tab.
func (m BucketBrowserModel) visible() []bucketRow {
	want := browserTabs[m.Tab]
	if want == classpath.BucketNone {
		return m.Rows
	}
	var out []bucketRow
	for _, r := range m.Rows {
		if r.Bucket == want {
			out = append(out, r)
		}
	}
	return out
}

func (m BucketBrowserModel) Init() tea.Cmd {
	return nil
}

func (m BucketBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.visible())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab", "right", "l":
			m = m.switchTab(1)
		case "shift+tab", "left", "h":
			m = m.switchTab(len(browserTabs) - 1)
		case "enter":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BucketBrowserModel) switchTab(step int) BucketBrowserModel {
	m.Tab = (m.Tab + step) % len(browserTabs)
	m.Cursor, m.Offset = 0, 0
	return m
}

func (m BucketBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Classified Dependencies"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⇥ bucket  ⏎ details  q quit"))
	b.WriteString("\n\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n")

	rows := m.visible()
	if len(rows) == 0 {
		b.WriteString(listDimStyle.Render("  (no dependencies in this bucket)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(rows))
	var cells [][]string
	for i := m.Offset; i < end; i++ {
		r := rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		segment := r.Segment
		if segment == "" {
			segment = "—"
		}
		cells = append(cells, []string{cursor, string(r.Bucket), r.Node.ID.Coordinate(), segment})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Bucket", "Coordinate", "Embedded As").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(rows) {
				return lipgloss.NewStyle()
			}
			style := lipgloss.NewStyle()
			if col == 1 {
				style = style.Foreground(bucketColor[rows[idx].Bucket])
			}
			if idx == m.Cursor {
				style = style.Bold(true)
				if col != 1 {
					style = style.Foreground(colorCyan)
				}
			}
			return style
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(rows))))
	b.WriteString("\n")

	if m.Detail && m.Cursor < len(rows) {
		b.WriteString(detailView(rows[m.Cursor]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m BucketBrowserModel) tabsView() string {
	tabs := make([]string, len(browserTabs))
	for i, bucket := range browserTabs {
		name := string(bucket)
		count := 0
		if bucket == classpath.BucketNone {
			name, count = "all", len(m.Rows)
		} else {
			for _, r := range m.Rows {
				if r.Bucket == bucket {
					count++
				}
			}
		}
		label := fmt.Sprintf("%s (%d)", name, count)
		if i == m.Tab {
			tabs[i] = tabActive.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func detailView(r bucketRow) string {
	n := r.Node
	lines := []string{StyleValue.Bold(true).Render(n.ID.String())}
	if n.Bundle {
		lines = append(lines, "bundle: "+n.ID.SymbolicName())
	}
	if n.File != "" {
		lines = append(lines, "file: "+filepath.Base(n.File))
	} else if n.URL != "" {
		lines = append(lines, "url: "+n.URL)
	}
	if len(n.Provides) > 0 {
		lines = append(lines, fmt.Sprintf("packages (%d): %s", len(n.Provides), strings.Join(n.Provides, ", ")))
	}
	lines = append(lines, fmt.Sprintf("dependencies: %d", len(n.Children)))
	return detailStyle.Render(strings.Join(lines, "\n"))
}
