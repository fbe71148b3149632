package main

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/aanand-mishra/local-crud/internal/crud"
	"github.com/aanand-mishra/local-crud/internal/types"
	"github.com/spf13/cobra"
)

var errValidation = errors.New("validation failed")

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the local user list",
	}
	cmd.AddCommand(
		newUsersListCmd(a),
		newUsersAddCmd(a),
		newUsersEditCmd(a),
		newUsersDeleteCmd(a),
		newUsersClearCmd(a),
	)
	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.users()
			if err != nil {
				return err
			}
			return a.printUsers(c.Users())
		},
	}
}

func newUsersAddCmd(a *app) *cobra.Command {
	var name, email, age string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		Long: `Add validates the draft and appends a new user.

Example:
  local-crud users add --name Amy --email a@b.com --age 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.users()
			if err != nil {
				return err
			}
			fields := map[string]string{
				types.FieldName:  name,
				types.FieldEmail: email,
				types.FieldAge:   age,
			}
			return a.submit(c, fields, "")
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "user name (letters and spaces)")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&age, "age", "", "age, 1 to 120")
	return cmd
}

func newUsersEditCmd(a *app) *cobra.Command {
	var name, email, age string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a user; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.users()
			if err != nil {
				return err
			}
			record, ok := c.Find(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", crud.ErrNotFound, args[0])
			}
			if err := c.BeginEdit(record); err != nil {
				return err
			}

			fields := map[string]string{}
			if cmd.Flags().Changed("name") {
				fields[types.FieldName] = name
			}
			if cmd.Flags().Changed("email") {
				fields[types.FieldEmail] = email
			}
			if cmd.Flags().Changed("age") {
				fields[types.FieldAge] = age
			}
			return a.submit(c, fields, record.ID)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&email, "email", "", "new email address")
	cmd.Flags().StringVar(&age, "age", "", "new age")
	return cmd
}

func newUsersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.users()
			if err != nil {
				return err
			}
			if err := c.DeleteOne(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted user: %s\n", args[0])
			return nil
		},
	}
}

func newUsersClearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every user (requires --yes)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.users()
			if err != nil {
				return err
			}
			if err := c.ClearAll(yes); err != nil {
				if errors.Is(err, crud.ErrConfirmationRequired) {
					return fmt.Errorf("%w: re-run with --yes", err)
				}
				return err
			}
			fmt.Fprintln(a.out, "Cleared all users")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every user")
	return cmd
}

// submit applies fields to the draft and submits it. editID is the user
// being edited, or "" when adding. Field errors are printed one per line,
// sorted by field, and reported as errValidation.
func (a *app) submit(c *crud.Controller, fields map[string]string, editID string) error {
	for _, f := range []string{types.FieldName, types.FieldEmail, types.FieldAge} {
		v, ok := fields[f]
		if !ok {
			continue
		}
		if err := c.UpdateDraftField(f, v); err != nil {
			return err
		}
	}

	errs, err := c.Submit()
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		if a.jsonOutput {
			if err := a.printJSON(errs); err != nil {
				return err
			}
		} else {
			keys := make([]string, 0, len(errs))
			for k := range errs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(a.out, "%s: %s\n", k, errs[k])
			}
		}
		return errValidation
	}

	verb := "Updated"
	saved, _ := c.Find(editID)
	if editID == "" {
		verb = "Added"
		users := c.Users()
		saved = users[len(users)-1]
	}
	if a.jsonOutput {
		return a.printJSON(saved)
	}
	fmt.Fprintf(a.out, "%s user: %s\n", verb, saved.ID)
	return nil
}

func (a *app) printUsers(users []types.User) error {
	if a.jsonOutput {
		return a.printJSON(users)
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "no user added yet")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tAGE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", u.ID, u.Name, u.Email, u.Age)
	}
	return tw.Flush()
}
