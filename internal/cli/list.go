package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		docs, err := a.Store.List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(docs) == 0 {
			fmt.Fprintln(out, dimStyle.Render("No documents indexed yet."))
			return nil
		}
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d document(s) indexed", len(docs))))
		for _, d := range docs {
			fmt.Fprintf(out, "%s  %s %s\n", d.DocID, d.DocName, dimStyle.Render(fmt.Sprintf("(%d nodes, %s)", d.NodeCount, d.SourceFile)))
			if d.DocDescription != "" {
				fmt.Fprintf(out, "  %s\n", dimStyle.Render(d.DocDescription))
			}
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <doc_id...>",
	Short: "Remove indexed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deleteYes {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete %d document(s)? [y/N] ", len(args))
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("Aborted."))
				return nil
			}
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		missing := 0
		for _, id := range args {
			deleted, err := a.Store.Delete(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			if !deleted {
				missing++
				fmt.Fprintf(out, "%s %s not found\n", errorStyle.Render("FAIL"), id)
				continue
			}
			fmt.Fprintf(out, "%s removed %s\n", successStyle.Render("OK"), id)
		}
		if missing > 0 {
			return fmt.Errorf("%d document(s) not found", missing)
		}
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(listCmd, deleteCmd)
}
