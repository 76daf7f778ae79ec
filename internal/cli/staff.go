package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2caleb/gold-charp-investments-sub003/internal/container"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

func newStaffCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff who receive workflow notifications",
	}

	var (
		name       string
		role       string
		larkOpenID string
		inactive   bool
	)
	add := &cobra.Command{
		Use:   "add <staff-id>",
		Short: "Create or update a staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return NewExitError(2, fmt.Errorf("staff id is required"))
			}
			r, err := workflow.ParseRole(role)
			if err != nil {
				return NewExitError(2, err)
			}
			staff := &entity.StaffMember{
				ID:         id,
				FullName:   name,
				Role:       string(r),
				LarkOpenID: larkOpenID,
				Active:     !inactive,
			}

			return app.withContainer(cmd.Context(), func(c *container.Container) error {
				if err := c.Repositories().Staff.Upsert(cmd.Context(), staff); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "staff %s saved as %s\n", staff.ID, r.Title())
				return nil
			})
		},
	}
	add.Flags().StringVar(&name, "name", "", "full name")
	add.Flags().StringVar(&role, "role", "", "workflow role")
	add.Flags().StringVar(&larkOpenID, "lark-open-id", "", "Lark open_id for push delivery")
	add.Flags().BoolVar(&inactive, "inactive", false, "store the member as inactive")
	_ = add.MarkFlagRequired("role")

	cmd.AddCommand(add)
	return cmd
}
