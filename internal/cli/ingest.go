package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/treerag/internal/pipeline"
)

var ingestDrop bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Index files, or everything in the drop folder",
	Long: `Index the given files. With --drop, every supported file in DROP_DIR is
indexed and moved to PROCESSED_DIR on success.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !ingestDrop {
			return fmt.Errorf("no files given; pass file paths or --drop")
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var results []pipeline.FileResult
		for _, path := range args {
			r := pipeline.FileResult{File: filepath.Base(path)}
			docID, err := a.Indexer.IndexFile(cmd.Context(), path, nil)
			if err != nil {
				r.Error = err.Error()
			}
			r.DocID = docID
			results = append(results, r)
		}
		if ingestDrop {
			dropped, err := a.Indexer.IngestDir(cmd.Context(), a.Config.DropDir, a.Config.ProcessedDir, a.Config.MaxConcurrentIngest)
			results = append(results, dropped...)
			if err != nil {
				printIngest(cmd, results)
				return err
			}
		}
		return printIngest(cmd, results)
	},
}

func printIngest(cmd *cobra.Command, results []pipeline.FileResult) error {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No supported files found in the drop folder."))
		return nil
	}
	failed := 0
	for _, r := range results {
		if r.DocID == "" {
			failed++
			fmt.Fprintf(out, "%s %s %s\n", errorStyle.Render("FAIL"), r.File, dimStyle.Render(r.Error))
			continue
		}
		fmt.Fprintf(out, "%s %s -> %s\n", successStyle.Render("OK"), r.File, r.DocID)
		if r.Error != "" {
			fmt.Fprintf(out, "   %s\n", dimStyle.Render(r.Error))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(results))
	}
	return nil
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDrop, "drop", false, "Ingest every supported file in the drop folder")
	rootCmd.AddCommand(ingestCmd)
}
