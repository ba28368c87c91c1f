package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/treerag/internal/search"
)

var (
	searchDoc   string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Keyword search over indexed sections",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		limit := searchLimit
		if limit <= 0 {
			limit = a.Config.SearchMaxResults
		}
		hits, err := a.Engine.Search(cmd.Context(), strings.Join(args, " "), searchDoc, limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(hits) == 0 {
			fmt.Fprintln(out, dimStyle.Render("No matching results found."))
			return nil
		}
		for i, h := range hits {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render("["+h.DocName+"] "+h.NodePath),
				dimStyle.Render(fmt.Sprintf("(score: %d, %s/%s)", h.Score, h.DocID, h.NodeID)))
			if h.Summary != "" {
				fmt.Fprintf(out, "  Summary: %s\n", h.Summary)
			}
			if h.TextSnippet != "" {
				fmt.Fprintf(out, "  Snippet: %s\n", h.TextSnippet)
			}
		}
		return nil
	},
}

var overviewCmd = &cobra.Command{
	Use:   "overview <doc_id>",
	Short: "Print a document's section tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		text, found, err := a.Engine.Overview(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("document '%s' not found", args[0])
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

var sectionCmd = &cobra.Command{
	Use:   "section <doc_id> <node_id>",
	Short: "Print the full text of one section",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sec, err := a.Engine.Section(cmd.Context(), args[0], args[1])
		if errors.Is(err, search.ErrDocumentNotFound) {
			return fmt.Errorf("document '%s' not found", args[0])
		}
		if errors.Is(err, search.ErrNodeNotFound) {
			return fmt.Errorf("node '%s' not found in document '%s'", args[1], args[0])
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		title := sec.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintln(out, titleStyle.Render(title))
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%s / %s (level %d)", sec.DocName, sec.NodePath, sec.Level)))
		if sec.Summary != "" {
			fmt.Fprintf(out, "Summary: %s\n", sec.Summary)
		}
		body := sec.Text
		if body == "" {
			body = "(No text content available for this node)"
		}
		fmt.Fprintln(out, boxStyle.Render(body))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchDoc, "doc", "d", "", "Restrict the search to one doc id")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of results (0 = SEARCH_MAX_RESULTS)")
	rootCmd.AddCommand(searchCmd, overviewCmd, sectionCmd)
}
