package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/2caleb/gold-charp-investments-sub003/internal/container"
)

func newMatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "match <client-id>",
		Short: "List loan applications that belong to a client, best match first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || clientID <= 0 {
				return NewExitError(2, fmt.Errorf("invalid client id %q", args[0]))
			}

			return app.withContainer(cmd.Context(), func(c *container.Container) error {
				ctx := cmd.Context()
				client, err := c.Services().Clients.Get(ctx, clientID)
				if err != nil {
					return err
				}
				results, err := c.Services().Matches.RankForClient(ctx, clientID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderMatches(client, results))
				return nil
			})
		},
	}
}
