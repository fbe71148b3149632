package main

import (
	"fmt"

	"github.com/aanand-mishra/local-crud/internal/remote"
	"github.com/spf13/cobra"
)

// newRemoteCmd wires the remote user forms. Each command prints the
// status line the form would show; failures also exit non-zero.
func newRemoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Send user requests to the remote API",
	}

	var name, email string

	create := &cobra.Command{
		Use:   "create",
		Short: "POST /users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := remote.NewFromConfig(a.cfg)
			if err != nil {
				return err
			}
			created, err := client.CreateUser(cmd.Context(), name, email)
			return a.report(remote.OpCreate, "", created, err)
		},
	}
	create.Flags().StringVar(&name, "name", "", "user name")
	create.Flags().StringVar(&email, "email", "", "email address")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "PUT /users/{id}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := remote.NewFromConfig(a.cfg)
			if err != nil {
				return err
			}
			updated, err := client.UpdateUser(cmd.Context(), args[0], name, email)
			return a.report(remote.OpUpdate, args[0], updated, err)
		},
	}
	update.Flags().StringVar(&name, "name", "", "new name")
	update.Flags().StringVar(&email, "email", "", "new email address")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "DELETE /users/{id}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := remote.NewFromConfig(a.cfg)
			if err != nil {
				return err
			}
			err = client.DeleteUser(cmd.Context(), args[0])
			return a.report(remote.OpDelete, args[0], nil, err)
		},
	}

	cmd.AddCommand(create, update, del)
	return cmd
}

func (a *app) report(op remote.Op, id string, body any, err error) error {
	msg := remote.Message(op, id, err)
	if a.jsonOutput {
		out := map[string]any{"message": msg}
		if err == nil && body != nil {
			out["user"] = body
		}
		if perr := a.printJSON(out); perr != nil {
			return perr
		}
	} else {
		fmt.Fprintln(a.out, msg)
	}
	return err
}
