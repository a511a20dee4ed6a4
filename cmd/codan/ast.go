package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codan/internal/astio"
	"codan/internal/diagfmt"
)

var astCmd = &cobra.Command{
	Use:   "ast [flags] <unit>",
	Short: "Print or convert a serialized translation unit",
	Long: `Print the syntax tree of a .cast/.json unit, or re-encode it with --convert
(the output format follows the file extension)`,
	Args: cobra.ExactArgs(1),
	RunE: runAST,
}

func init() {
	astCmd.Flags().String("format", "pretty", "output format (pretty|tree|json)")
	astCmd.Flags().String("convert", "", "write the unit to this .cast or .json file instead of printing it")
}

func runAST(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	convert, err := cmd.Flags().GetString("convert")
	if err != nil {
		return fmt.Errorf("failed to get convert flag: %w", err)
	}

	unit, err := astio.ReadFile(args[0])
	if err != nil {
		return err
	}
	if convert != "" {
		return astio.WriteFile(convert, unit)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		return diagfmt.FormatASTPretty(out, unit.AST, unit.File, unit.Sources)
	case "tree":
		return diagfmt.FormatASTTree(out, unit.AST, unit.File, unit.Sources)
	case "json":
		return diagfmt.FormatASTJSON(out, unit.AST, unit.File)
	default:
		return fmt.Errorf("unknown format %q (expected pretty|tree|json)", format)
	}
}
