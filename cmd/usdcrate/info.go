package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/cratekit/pkg/usd"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.usdc>",
		Short: "Validate a crate file and report stage metadata",
		Long: `The info command validates a crate file's bootstrap and table of
contents, decodes the stage, and reports layer metadata and prim counts.

Example:
  usdcrate info scene.usdc
  usdcrate info scene.usdc --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
}

type infoReport struct {
	File               string  `json:"file"`
	SizeBytes          int64   `json:"sizeBytes"`
	UpAxis             string  `json:"upAxis"`
	MetersPerUnit      float64 `json:"metersPerUnit"`
	TimeCodesPerSecond float64 `json:"timeCodesPerSecond"`
	StartTimeCode      float64 `json:"startTimeCode"`
	EndTimeCode        float64 `json:"endTimeCode"`
	DefaultPrim        string  `json:"defaultPrim,omitempty"`
	RootPrims          int     `json:"rootPrims"`
	TotalPrims         int     `json:"totalPrims"`
	Warnings           string  `json:"warnings,omitempty"`
}

func runInfo(path string) error {
	printVerbose("Opening crate: %s\n", path)

	st, warns, err := usd.ReadStageFromFile(path, decoderConfig())
	if err != nil {
		return fmt.Errorf("failed to read stage: %w", err)
	}

	metas := st.Metas()
	report := infoReport{
		File:               path,
		UpAxis:             metas.UpAxis.String(),
		MetersPerUnit:      metas.MetersPerUnit,
		TimeCodesPerSecond: metas.TimeCodesPerSecond,
		StartTimeCode:      metas.StartTimeCode,
		EndTimeCode:        metas.EndTimeCode,
		DefaultPrim:        string(metas.DefaultPrim),
		RootPrims:          len(st.RootPrims()),
		TotalPrims:         countPrims(st.RootPrims()),
		Warnings:           warns,
	}
	if stat, err := os.Stat(path); err == nil {
		report.SizeBytes = stat.Size()
	}

	if jsonOut {
		return printJSON(report)
	}

	printInfo("\nStage Information:\n")
	printInfo("  File: %s\n", report.File)
	printInfo("  Size: %d bytes\n", report.SizeBytes)
	printInfo("  Up axis: %s\n", report.UpAxis)
	printInfo("  Meters per unit: %g\n", report.MetersPerUnit)
	printInfo("  Time codes per second: %g\n", report.TimeCodesPerSecond)
	if report.StartTimeCode != 0 || report.EndTimeCode != 0 {
		printInfo("  Time code range: [%g, %g]\n", report.StartTimeCode, report.EndTimeCode)
	}
	if report.DefaultPrim != "" {
		printInfo("  Default prim: %s\n", report.DefaultPrim)
	}
	printInfo("  Root prims: %d\n", report.RootPrims)
	printInfo("  Total prims: %d\n", report.TotalPrims)
	if report.Warnings != "" && verbose {
		printInfo("\nWarnings:\n%s\n", report.Warnings)
	}
	return nil
}

func countPrims(prims []*usd.Prim) int {
	n := 0
	for _, p := range prims {
		n += 1 + countPrims(p.Children)
		for _, variants := range p.Variants {
			for _, v := range variants {
				n += 1 + countPrims(v.Children)
			}
		}
	}
	return n
}
