package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/service"
	"github.com/2caleb/gold-charp-investments-sub003/internal/container"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

type decideOptions struct {
	role     string
	decision string
	notes    string
	actor    string
}

func newDecideCommand(app *App) *cobra.Command {
	var opts decideOptions
	cmd := &cobra.Command{
		Use:   "decide <application-id>",
		Short: "Record an approval or rejection for a loan application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decisionCmd, err := opts.command(args[0])
			if err != nil {
				return NewExitError(2, err)
			}

			return app.withContainer(cmd.Context(), func(c *container.Container) error {
				result, err := c.Services().Workflow.RecordDecision(cmd.Context(), decisionCmd)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderDecision(result))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.role, "role", "", "deciding role: manager, director, chairperson or ceo")
	cmd.Flags().StringVar(&opts.decision, "decision", "", "approve or reject")
	cmd.Flags().StringVar(&opts.notes, "notes", "", "decision notes; rejections without notes get generated ones")
	cmd.Flags().StringVar(&opts.actor, "actor", "", "staff id of the person deciding")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.MarkFlagRequired("decision")
	return cmd
}

func (o decideOptions) command(idArg string) (service.DecisionCommand, error) {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil || id <= 0 {
		return service.DecisionCommand{}, fmt.Errorf("invalid application id %q", idArg)
	}
	role, err := workflow.ParseRole(o.role)
	if err != nil {
		return service.DecisionCommand{}, err
	}
	decision, err := workflow.ParseDecision(o.decision)
	if err != nil {
		return service.DecisionCommand{}, err
	}
	return service.DecisionCommand{
		ApplicationID: id,
		Role:          role,
		Decision:      decision,
		Notes:         o.notes,
		ActorID:       o.actor,
	}, nil
}
