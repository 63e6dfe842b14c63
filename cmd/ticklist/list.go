package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/evanschultz/ticklist/internal/domain"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	var (
		markdown bool
		page     int
		kind     string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of tasks and exit",
		Example: `  ticklist list
  ticklist list --type incomplete --markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.resolve("list")
			if err != nil {
				return err
			}
			defer env.close(cmd.ErrOrStderr())

			if cmd.Flags().Changed("page") {
				env.cfg.API.Page = page
			}
			if cmd.Flags().Changed("type") {
				env.cfg.API.Type = kind
			}
			if env.cfg.API.Page < 1 {
				return fmt.Errorf("--page must be >= 1, got %d", env.cfg.API.Page)
			}
			ctrlCfg, err := env.controllerConfig()
			if err != nil {
				return fmt.Errorf("--type: %w", err)
			}
			client, err := env.newTaskClient()
			if err != nil {
				return err
			}

			tasks, err := client.ListTasks(cmd.Context(), ctrlCfg.Page, ctrlCfg.Filter)
			if err != nil {
				env.logger.Error("command flow failed", "command", "list", "err", err)
				return fmt.Errorf("list tasks from %s: %w", env.cfg.API.BaseURL, err)
			}
			env.logger.Debug("tasks listed", "count", len(tasks))
			if markdown {
				return writeTaskMarkdown(opts.stdout, tasks)
			}
			_, err = fmt.Fprintln(opts.stdout, renderTaskTable(tasks))
			return err
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render as a markdown checklist")
	cmd.Flags().IntVar(&page, "page", 1, "page to fetch (overrides api.page)")
	cmd.Flags().StringVar(&kind, "type", string(domain.TaskFilterAll), "all, completed or incomplete (overrides api.type)")
	return cmd
}

func renderTaskTable(tasks []domain.Task) string {
	if len(tasks) == 0 {
		return "no tasks"
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	doneStyle := cellStyle.Foreground(lipgloss.Color("243"))

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("ID", "DONE", "NAME", "DESCRIPTION", "UPDATED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(tasks) && tasks[row].IsCompleted:
				return doneStyle
			default:
				return cellStyle
			}
		})
	for _, task := range tasks {
		done := ""
		if task.IsCompleted {
			done = "✓"
		}
		updated := "-"
		if !task.UpdatedAt.IsZero() {
			updated = task.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		t.Row(strconv.FormatInt(task.ID, 10), done, task.Name, task.Description, updated)
	}
	return t.String()
}

func taskMarkdown(tasks []domain.Task) string {
	var b strings.Builder
	b.WriteString("# Tasks\n\n")
	if len(tasks) == 0 {
		b.WriteString("_no tasks_\n")
		return b.String()
	}
	for _, task := range tasks {
		box := " "
		if task.IsCompleted {
			box = "x"
		}
		fmt.Fprintf(&b, "- [%s] **%s**", box, task.Name)
		if desc := strings.TrimSpace(task.Description); desc != "" {
			fmt.Fprintf(&b, ": %s", desc)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeTaskMarkdown(w io.Writer, tasks []domain.Task) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("configure markdown renderer: %w", err)
	}
	out, err := renderer.Render(taskMarkdown(tasks))
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
