package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/localitree/pkg/pipeline"
	"github.com/matzehuels/localitree/pkg/render/nodelink"
	"github.com/matzehuels/localitree/pkg/tree"
)

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "browse [source]",
		Short: "Explore a locality tree and save the current view",
		Long: `Load a locality tree once and explore it in the terminal.

Keys:
  ↑/↓ j/k     move
  enter/space collapse or expand the selected node
  ←/h →/l     collapse / expand, or move to the parent
  e / c       expand everything / collapse below the root
  w           write the current view as SVG
  q           quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.apply(cmd, &cfg)
			opts.Source = sourceArg(args, cfg)

			runner, cleanup, err := c.newRunner(cfg)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer cleanup()

			ctx := cmd.Context()
			spinner := newSpinnerWithContext(ctx, "Fetching "+opts.Source+"...")
			spinner.Start()
			root, err := runner.Loader.Load(ctx, opts.Source)
			if err != nil {
				spinner.StopWithError("Load failed")
				return err
			}
			spinner.Stop()

			// Collapse flags are applied once; from here on the view is
			// driven by the keyboard.
			root = pipeline.Prepare(root, opts)
			opts.Collapse, opts.CollapseDepth, opts.Expand = nil, 0, false
			opts.Formats = []string{pipeline.FormatSVG}

			output := outputPaths(cfg.Output, opts.Formats)[pipeline.FormatSVG]
			save := func(n *tree.Node) (string, error) {
				return c.saveView(ctx, runner, n, opts, output)
			}

			m := newBrowseModel(root, opts.Palette, save)
			p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("browse: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "file written by 'w' (default: "+defaultOutput+")")

	return cmd
}

// saveView re-renders root with its current collapse state.
func (c *CLI) saveView(ctx context.Context, runner *pipeline.Runner, root *tree.Node, opts pipeline.Options, output string) (string, error) {
	result, err := runner.Render(ctx, root, opts)
	if err != nil {
		return "", err
	}
	paths, err := writeArtifacts(result.Artifacts, opts.Formats, output)
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// =============================================================================
// browseModel - Interactive tree navigation
// =============================================================================

var (
	browseCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseNormalStyle = lipgloss.NewStyle().Foreground(colorWhite)
	browseHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

type browseRow struct {
	node  *tree.Node
	depth int
	path  string
}

// browseModel lists the visible nodes of a tree. Toggling a node changes
// the tree in place; saving renders that state.
type browseModel struct {
	root    *tree.Node
	palette nodelink.Palette
	save    func(*tree.Node) (string, error)

	rows   []browseRow
	cursor int
	offset int
	height int
	status string
}

func newBrowseModel(root *tree.Node, palette nodelink.Palette, save func(*tree.Node) (string, error)) browseModel {
	if palette.IsZero() {
		palette = nodelink.DefaultPalette()
	}
	m := browseModel{root: root, palette: palette, save: save, height: 20}
	m.refresh()
	return m
}

// refresh rebuilds the visible rows and keeps the cursor in range.
func (m *browseModel) refresh() {
	m.rows = m.rows[:0]
	var names []string
	tree.WalkVisible(m.root, func(n *tree.Node, depth int) bool {
		names = append(names[:depth], n.Name)
		m.rows = append(m.rows, browseRow{node: n, depth: depth, path: strings.Join(names, "/")})
		return true
	})
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scroll()
}

func (m *browseModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *browseModel) move(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor > len(m.rows)-1 {
		m.cursor = len(m.rows) - 1
	}
	m.scroll()
}

// parent moves the cursor to the nearest row above with a smaller depth.
func (m *browseModel) parent() {
	depth := m.rows[m.cursor].depth
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].depth < depth {
			m.cursor = i
			m.scroll()
			return
		}
	}
}

func (m browseModel) selected() browseRow { return m.rows[m.cursor] }

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.height)
		case "pgdown":
			m.move(m.height)
		case "home", "g":
			m.move(-len(m.rows))
		case "end", "G":
			m.move(len(m.rows))
		case "enter", " ":
			m.selected().node.Toggle()
			m.refresh()
		case "left", "h":
			if n := m.selected().node; n.HasChildren() && !n.Collapsed {
				n.Collapsed = true
				m.refresh()
			} else {
				m.parent()
			}
		case "right", "l":
			if n := m.selected().node; n.Collapsed {
				n.Collapsed = false
				m.refresh()
			}
		case "e":
			tree.ExpandAll(m.root)
			m.refresh()
		case "c":
			tree.ExpandAll(m.root)
			tree.CollapseDepth(m.root, 1)
			m.refresh()
		case "w":
			path, err := m.save(m.root)
			if err != nil {
				m.status = StyleWarning.Render("save failed: " + err.Error())
			} else {
				m.status = StyleSuccess.Render(iconSuccess+" wrote ") + StyleValue.Render(path)
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
		m.scroll()
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.root.Name))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d nodes, %d visible", tree.Count(m.root), len(m.rows))))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ toggle  e expand all  c collapse  w write svg  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strings.Repeat("  ", r.depth) + marker(r.node) + " " + r.node.Name,
			fmt.Sprintf("%.0f", r.node.Value),
			childSummary(r.node),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Value", "Children").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return browseHeaderStyle
			}
			idx := m.offset + row
			if idx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			base := browseNormalStyle
			if idx == m.cursor {
				base = browseCursorStyle
			}
			if col == 2 {
				return base.Foreground(lipgloss.Color(m.palette.Color(m.rows[idx].node.Value)))
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d] %s", m.cursor+1, len(m.rows), m.selected().path)))
	if m.status != "" {
		b.WriteString("\n  " + m.status)
	}
	return b.String()
}

func marker(n *tree.Node) string {
	switch {
	case n.IsLeaf():
		return "·"
	case n.Collapsed:
		return "▸"
	default:
		return "▾"
	}
}

func childSummary(n *tree.Node) string {
	if n.IsLeaf() {
		return ""
	}
	s := fmt.Sprintf("%d", len(n.Children))
	if n.Collapsed {
		s += " hidden"
	}
	return s
}
