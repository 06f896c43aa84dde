package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/cratekit/internal/mmfile"
	"github.com/joshuapare/cratekit/internal/reader"
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file.usdc>",
		Short: "Dump the raw crate tables",
		Long: `The dump command prints the decoded low-level tables: tokens,
fields, specs, and paths. Intended for debugging crate files.

Example:
  usdcrate dump scene.usdc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0])
		},
	}
}

func runDump(path string) error {
	data, unmap, err := mmfile.Map(path)
	if err != nil {
		return err
	}
	defer func() {
		if unmap != nil {
			_ = unmap()
		}
	}()

	r, err := reader.Open(data, decoderConfig())
	if err != nil {
		return err
	}
	if err := r.Decode(); err != nil {
		return err
	}

	printInfo("version: %s\n", r.Version())

	printInfo("\ntokens (%d):\n", len(r.Tokens()))
	for i, tok := range r.Tokens() {
		printInfo("  [%d] %q\n", i, string(tok))
	}

	printInfo("\nfields (%d):\n", len(r.Fields()))
	for i, f := range r.Fields() {
		printInfo("  [%d] %s = {%s}\n", i, string(r.Tokens()[f.TokenIndex]), f.Rep)
	}

	printInfo("\nspecs (%d):\n", len(r.Specs()))
	for i, s := range r.Specs() {
		printInfo("  [%d] path=%d fieldset=%d type=%s\n", i, s.PathIndex, s.FieldSetIndex, s.Type)
	}

	printInfo("\npaths (%d):\n", len(r.Paths()))
	for i, p := range r.Paths() {
		printInfo("  [%d] %s\n", i, p)
	}

	for _, warn := range r.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warn)
	}
	return nil
}
