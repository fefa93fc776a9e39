package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgallion1/minutesdoc/internal/pipeline"
	"github.com/dgallion1/minutesdoc/internal/remote"
)

var convertCmd = &cobra.Command{
	Use:   "convert <path>",
	Short: "Convert a minutes file into a .docx document",
	Long: `Convert reads the minutes file, asks the remote model for an analysis and a
document plan, then renders the document. The remote document service is tried
first; when it fails, or with --no-remote, the document is written locally to
<output-dir>/<prefix>_<YYYYMMDD_HHMMSS>.docx.`,
	Args: exactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().Bool("no-remote", false, "skip the remote document service and render locally")
	convertCmd.Flags().String("output-dir", "", "directory for locally rendered documents (overrides OUTPUT_DIR)")
	convertCmd.Flags().Bool("require-tool-use", false, "treat a remote reply without tool use as a failure")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	noRemote, _ := cmd.Flags().GetBool("no-remote")
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.OutputDir = dir
	}
	if strict, _ := cmd.Flags().GetBool("require-tool-use"); strict {
		cfg.RequireToolUse = true
	}

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.client.Close()

	res, err := a.orchestrator.Convert(cmd.Context(), args[0], !noRemote)
	printResult(cmd.OutOrStdout(), res)
	return err
}

// printResult writes the operator-facing report of a conversion.
func printResult(w io.Writer, res *pipeline.Result) {
	if res == nil {
		return
	}
	if res.Analysis != "" {
		fmt.Fprintf(w, "=== Analysis ===\n%s\n\n", res.Analysis)
	}
	if res.Plan != "" {
		fmt.Fprintf(w, "=== Plan ===\n%s\n\n", res.Plan)
	}
	if res.RemoteText != "" {
		fmt.Fprintf(w, "=== Remote reply ===\n%s\n", res.RemoteText)
		printToolUse(w, res.ToolInvocations)
		fmt.Fprintln(w)
	}
	for _, se := range res.StageErrors {
		fmt.Fprintf(w, "skipped %s: %s\n", se.Stage, se.Error)
	}
	if res.Status != pipeline.StatusCompleted {
		return
	}
	fmt.Fprintf(w, "Artifact: %s (%s)\n", res.ArtifactPath, res.Strategy)
	if !res.Verified {
		if res.ArtifactPath == "" {
			fmt.Fprintln(w, "warning: the remote service did not report where it saved the document")
		} else {
			fmt.Fprintln(w, "warning: this path was reported by the remote service and has not been verified locally")
		}
	}
}

func printToolUse(w io.Writer, invocations []remote.ToolInvocation) {
	for _, inv := range invocations {
		fmt.Fprintf(w, "tool use: %s\n", inv.Name)
	}
}
