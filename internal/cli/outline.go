package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/treerag/internal/config"
	"github.com/dgallion1/treerag/internal/parser"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "Print the heading outline a file converts to",
	Long:  `Run only the converter for a file and print the leveled outline that tree assembly would consume. Nothing is stored.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		p, err := parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}.ForFile(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := p.Parse(bytes.NewReader(data), args[0])
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		fmt.Fprint(cmd.OutOrStdout(), doc.Outline)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}
