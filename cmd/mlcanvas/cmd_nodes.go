package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avi3tal/mlcanvas/internal/nodes"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes [subtype]",
	Short: "List node subtypes or show the configuration of one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNodes,
}

func runNodes(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		s, err := renderSubtypes()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
		return nil
	}

	subtype := types.Subtype(args[0])
	fields, err := nodes.Schema(subtype)
	if err != nil {
		return err
	}
	op, _ := nodes.Lookup(subtype)
	fmt.Fprintf(out, "%s (%s)\n", subtype, op.Kind())
	if len(fields) == 0 {
		fmt.Fprintln(out, "No configuration.")
		return nil
	}
	fmt.Fprintln(out, renderSchema(fields))
	return nil
}
