package main

import (
	"fmt"

	"github.com/aanand-mishra/local-crud/internal/types"
	"github.com/spf13/cobra"
)

func newThemeCmd(a *app) *cobra.Command {
	show := func(theme types.Theme) error {
		if a.jsonOutput {
			return a.printJSON(map[string]types.Theme{"theme": theme})
		}
		_, err := fmt.Fprintln(a.out, theme)
		return err
	}

	current := func(cmd *cobra.Command, args []string) error {
		c, err := a.todos(false)
		if err != nil {
			return err
		}
		return show(c.Theme())
	}

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the saved theme",
		Args:  cobra.NoArgs,
		RunE:  current,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved theme",
		Args:  cobra.NoArgs,
		RunE:  current,
	}

	toggle := &cobra.Command{
		Use:   "toggle",
		Short: "Switch between dark and light",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.todos(false)
			if err != nil {
				return err
			}
			next, err := c.ToggleTheme()
			if err != nil {
				return err
			}
			return show(next)
		},
	}

	set := &cobra.Command{
		Use:       "set dark|light",
		Short:     "Save a theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(types.ThemeDark), string(types.ThemeLight)},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.todos(false)
			if err != nil {
				return err
			}
			if err := c.SetTheme(types.Theme(args[0])); err != nil {
				return err
			}
			return show(c.Theme())
		},
	}

	cmd.AddCommand(showCmd, toggle, set)
	return cmd
}
