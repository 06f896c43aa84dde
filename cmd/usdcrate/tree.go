package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/joshuapare/cratekit/pkg/usd"
)

var (
	treeDepth int
	treeProps bool
)

func init() {
	cmd := newTreeCmd()
	cmd.Flags().IntVar(&treeDepth, "depth", 0, "Maximum depth (0 = unlimited)")
	cmd.Flags().BoolVar(&treeProps, "props", false, "Show properties too")
	rootCmd.AddCommand(cmd)
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file.usdc> [path]",
		Short: "Display the prim hierarchy",
		Long: `The tree command displays a hierarchical view of the prim tree,
optionally rooted at a prim path.

Example:
  usdcrate tree scene.usdc
  usdcrate tree scene.usdc /World/Robot --props
  usdcrate tree scene.usdc --depth 2`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(args)
		},
	}
}

func runTree(args []string) error {
	st, _, err := usd.ReadStageFromFile(args[0], decoderConfig())
	if err != nil {
		return fmt.Errorf("failed to read stage: %w", err)
	}

	roots := st.RootPrims()
	if len(args) > 1 {
		prim, err := st.GetPrimAtPath(args[1])
		if err != nil {
			return err
		}
		roots = []*usd.Prim{prim}
	}

	for _, prim := range roots {
		printPrimTree(prim, "", 1)
	}
	return nil
}

func printPrimTree(prim *usd.Prim, indent string, depth int) {
	printInfo("%s%s (%s)\n", indent, prim.Name, prim.TypeName)

	if treeProps {
		for _, name := range prim.PropertyOrder {
			prop := prim.Properties[name]
			printInfo("%s  .%s [%s %s]\n", indent, name, prop.Kind, prop.TypeName)
		}
	}

	if treeDepth > 0 && depth >= treeDepth {
		return
	}
	for _, child := range prim.Children {
		printPrimTree(child, indent+"  ", depth+1)
	}
	for _, setName := range prim.VariantSetOrder {
		variants := prim.Variants[setName]
		names := make([]string, 0, len(variants))
		for name := range variants {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			printInfo("%s  {%s=%s}\n", indent, setName, name)
			printPrimTree(variants[name], indent+"    ", depth+1)
		}
	}
}
