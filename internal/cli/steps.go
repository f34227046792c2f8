package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the resolved scan steps",
	Long:  "Shows the steps a run would execute, after config-file overrides and tool path resolution.",
	RunE:  listSteps,
}

func listSteps(cmd *cobra.Command, args []string) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Name", "Command", "On Failure", "Timeout"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator("│")

	for _, step := range appConfig.StepList() {
		policy := "halt"
		if step.ContinueOnFailure {
			policy = "continue"
		}
		timeout := "default"
		if step.Timeout > 0 {
			timeout = step.Timeout.String()
		}
		table.Append([]string{step.Name, step.CommandLine(), policy, timeout})
	}

	table.Render()
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
