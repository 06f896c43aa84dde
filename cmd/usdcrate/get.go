package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/usd"
	"github.com/joshuapare/cratekit/pkg/value"
)

var (
	getTime   float64
	getLinear bool
)

func init() {
	cmd := newGetCmd()
	cmd.Flags().Float64Var(&getTime, "time", 0, "Evaluation time code")
	cmd.Flags().BoolVar(&getLinear, "linear", false, "Use linear interpolation")
	rootCmd.AddCommand(cmd)
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file.usdc> <primPath.attr>",
		Short: "Evaluate an attribute value",
		Long: `The get command resolves an attribute (following connections) and
prints its value at the given time code.

Example:
  usdcrate get scene.usdc /World/Ball.radius
  usdcrate get scene.usdc /World/Ball.radius --time 12 --linear`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	}
}

func runGet(args []string) error {
	st, _, err := usd.ReadStageFromFile(args[0], decoderConfig())
	if err != nil {
		return fmt.Errorf("failed to read stage: %w", err)
	}

	path := types.ParsePath(args[1])
	if path.PropPart() == "" {
		return fmt.Errorf("%q does not name a property", args[1])
	}

	mode := value.InterpolationHeld
	if getLinear {
		mode = value.InterpolationLinear
	}

	v, err := st.EvaluateAttribute(path.PrimPart(), path.PropPart(), getTime, mode)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"path":  args[1],
			"type":  v.TypeName(),
			"value": fmt.Sprintf("%v", v.Interface()),
		})
	}
	if v.IsBlock() {
		printInfo("%s = None\n", args[1])
		return nil
	}
	printInfo("%s = %v (%s)\n", args[1], v.Interface(), v.TypeName())
	return nil
}
