package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/model"
)

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("usage: %s", usage)
		}
		return nil
	}
}

func parseID(cmd string, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || n <= 0 {
		return 0, usageErrorf("%s: not a todo id: %s", cmd, s)
	}
	return n, nil
}

func newListCmd(app *App) *cobra.Command {
	var (
		group  bool
		query  string
		page   int
		format string
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos",
		Args:    exactArgs(0, "todo ls [--group] [--query q] [--page n] [--format table|json|yaml]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			s, err := app.openLoaded(cmd.Context())
			if err != nil {
				return err
			}
			all := s.Todos()
			todos := all.Search(query)
			pages := model.PageCount(len(todos), app.cfg.PageSize)
			if page != 0 {
				if page < 1 || page > pages {
					return usageErrorf("ls: page %d out of range (1-%d)", page, pages)
				}
				todos = todos.Page(page-1, app.cfg.PageSize)
			}
			if format != formatTable {
				if todos == nil {
					todos = model.Collection{}
				}
				return encode(app.printer.Out(), format, todos)
			}
			footer := ""
			if page != 0 {
				footer = fmt.Sprintf("Page %d of %d", page, pages)
			}
			renderList(app.printer, all, todos, listView{group: group, query: query, footer: footer})
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "Group output by pending/done")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only todos whose title or description contains this")
	cmd.Flags().IntVar(&page, "page", 0, "Show one page (1-based); 0 shows everything")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format (table|json|yaml)")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var (
		description string
		completed   bool
	)
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a todo (the title can be several words)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageErrorf("usage: todo add <title...>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openLoaded(cmd.Context())
			if err != nil {
				return err
			}
			t, err := s.Add(cmd.Context(), model.Fields{
				Title:       model.String(strings.Join(args, " ")),
				Description: model.String(description),
				Completed:   model.Bool(completed),
			})
			if err != nil {
				return err
			}
			app.printer.OK(fmt.Sprintf("added #%d", t.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Longer description")
	cmd.Flags().BoolVar(&completed, "completed", false, "Create the todo already completed")
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var (
		title       string
		description string
		completed   bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a todo's title, description or completed flag",
		Args:  exactArgs(1, "todo edit <id> [--title t] [--description d] [--completed bool]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("edit", args[0])
			if err != nil {
				return err
			}
			var f model.Fields
			if cmd.Flags().Changed("title") {
				f.Title = model.String(title)
			}
			if cmd.Flags().Changed("description") {
				f.Description = model.String(description)
			}
			if cmd.Flags().Changed("completed") {
				f.Completed = model.Bool(completed)
			}
			if f.Empty() {
				return usageErrorf("edit: nothing to change (use --title, --description or --completed)")
			}
			s, err := app.openLoaded(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := s.Edit(cmd.Context(), id, f); err != nil {
				return err
			}
			app.printer.OK(fmt.Sprintf("updated #%d", id))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().BoolVar(&completed, "completed", false, "Completed flag")
	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle a todo between pending and done",
		Args:    exactArgs(1, "todo done <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("done", args[0])
			if err != nil {
				return err
			}
			s, err := app.openLoaded(cmd.Context())
			if err != nil {
				return err
			}
			t, err := s.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			state := "pending"
			if t.Completed {
				state = "done"
			}
			app.printer.OK(fmt.Sprintf("marked #%d %s", id, state))
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    exactArgs(1, "todo rm <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("rm", args[0])
			if err != nil {
				return err
			}
			s, err := app.openLoaded(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.Delete(cmd.Context(), id); err != nil {
				return err
			}
			app.printer.OK(fmt.Sprintf("removed #%d", id))
			return nil
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one todo, from the local mirror when possible",
		Args:  exactArgs(1, "todo show <id> [--format table|json|yaml]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("show", args[0])
			if err != nil {
				return err
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			t, err := s.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if format != formatTable {
				return encode(app.printer.Out(), format, t)
			}
			renderTodo(app.printer, t)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format (table|json|yaml)")
	return cmd
}

func newRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the collection from the server and replace the local mirror",
		Args:  exactArgs(0, "todo refresh"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.Refresh(cmd.Context()); err != nil {
				return err
			}
			app.printer.OK(fmt.Sprintf("refreshed %d todos", len(s.Todos())))
			return nil
		},
	}
}

func newCacheCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local mirror",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the mirrored collection; the next run fetches it again",
		Args:  exactArgs(0, "todo cache clear"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.ClearMirror(cmd.Context()); err != nil {
				return err
			}
			app.printer.OK("cache cleared")
			return nil
		},
	})
	return cmd
}
