package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	"github.com/iota-uz/iota-admin/pkg/hierarchy"
)

func newTreeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print a hierarchy as stored in the database",
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print the forest as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "departments",
		Short: "Department tree with user counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, closeFn, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			forest, err := rt.departments.Hierarchy(rt.ctx)
			if err != nil {
				return withCode(exitDB, err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), forest)
			}
			return renderForest(cmd.OutOrStdout(), forest, func(n *hierarchy.Node[department.Department]) string {
				return fmt.Sprintf("%s (users: %d, total: %d)", n.Item.Name, n.Count, n.Total)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "Reporting lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, closeFn, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			forest, err := rt.users.Hierarchy(rt.ctx)
			if err != nil {
				return withCode(exitDB, err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), forest)
			}
			return renderForest(cmd.OutOrStdout(), forest, func(n *hierarchy.Node[user.User]) string {
				return fmt.Sprintf("%s <%s>", n.Item.Name, n.Item.Email)
			})
		},
	})
	return cmd
}

// renderForest prints one node per line, children indented below their parent.
func renderForest[T any](w io.Writer, forest []*hierarchy.Node[T], label func(*hierarchy.Node[T]) string) error {
	var walk func(nodes []*hierarchy.Node[T], depth int) error
	walk = func(nodes []*hierarchy.Node[T], depth int) error {
		for _, n := range nodes {
			if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label(n)); err != nil {
				return err
			}
			if err := walk(n.Children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(forest, 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
