package main

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newOpsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ops [PREFIX]",
		Short: "List operations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open()
			if err != nil {
				return err
			}

			var data [][]string
			for _, op := range b.Ops() {
				if len(args) > 0 && !strings.HasPrefix(op.Name, args[0]) {
					continue
				}
				params := make([]string, len(op.Args))
				for i, arg := range op.Args {
					params[i] = arg.Name + " " + arg.Kind
				}
				data = append(data, []string{op.Name, strings.Join(params, ", "), op.Returns})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"NAME", "ARGUMENTS", "RETURNS"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
}
