package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aanand-mishra/local-crud/internal/types"
	"github.com/spf13/cobra"
)

func newTodosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todos",
		Short: "Manage the todo list",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show pending and completed todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.todos(false)
			if err != nil {
				return err
			}
			pending, completed := c.Pending(), c.Completed()
			if a.jsonOutput {
				return a.printJSON(map[string][]types.TodoView{
					"pending":   types.ViewsOf(pending),
					"completed": types.ViewsOf(completed),
				})
			}

			fmt.Fprintln(a.out, "Pending")
			if len(pending) == 0 {
				fmt.Fprintln(a.out, "  You're all caught up!")
			}
			for _, t := range pending {
				fmt.Fprintf(a.out, "  [ ] %d  %s\n", t.ID, t.Text)
			}
			fmt.Fprintln(a.out, "Completed")
			if len(completed) == 0 {
				fmt.Fprintln(a.out, "  No completed tasks yet")
			}
			for _, t := range completed {
				fmt.Fprintf(a.out, "  [x] %d  %s\n", t.ID, t.Text)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.todos(false)
			if err != nil {
				return err
			}
			t, err := c.Add(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.printTodo("Added", t)
		},
	}

	done := &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle a todo between pending and completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTodoID(args[0])
			if err != nil {
				return err
			}
			c, err := a.todos(false)
			if err != nil {
				return err
			}
			t, err := c.Toggle(id)
			if err != nil {
				return err
			}
			return a.printTodo("Toggled", t)
		},
	}

	edit := &cobra.Command{
		Use:   "edit <id> <text>...",
		Short: "Replace the text of a todo",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTodoID(args[0])
			if err != nil {
				return err
			}
			c, err := a.todos(false)
			if err != nil {
				return err
			}
			t, err := c.Edit(id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return a.printTodo("Edited", t)
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTodoID(args[0])
			if err != nil {
				return err
			}
			c, err := a.todos(false)
			if err != nil {
				return err
			}
			if err := c.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted todo: %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, add, done, edit, del)
	return cmd
}

func (a *app) printTodo(verb string, t types.Todo) error {
	if a.jsonOutput {
		return a.printJSON(types.ViewOf(t))
	}
	_, err := fmt.Fprintf(a.out, "%s todo: %d\n", verb, t.ID)
	return err
}

func parseTodoID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be an integer", s)
	}
	return id, nil
}
