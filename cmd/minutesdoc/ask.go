package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/minutesdoc/internal/remote"
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Send one prompt to the remote model with a capability set",
	Args:  exactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().String("set", "basic", "capability set to declare (see 'minutesdoc capabilities')")
	askCmd.Flags().Int("max-tokens", 1000, "maximum tokens in the reply")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	setName, _ := cmd.Flags().GetString("set")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	if maxTokens <= 0 {
		return fmt.Errorf("%w: --max-tokens must be positive", ErrUsage)
	}
	prompt := strings.TrimSpace(args[0])
	if prompt == "" {
		return fmt.Errorf("%w: prompt is empty", ErrUsage)
	}

	catalog, err := cfg.LoadCatalog()
	if err != nil {
		return err
	}
	caps, err := catalog.Resolve(setName)
	if err != nil {
		return err
	}

	client := newRemoteClient(cfg, nil, logger)
	defer client.Close()

	logger.Debug("asking", "set", setName, "capabilities", len(caps), "client", client.String())
	resp, err := client.Invoke(cmd.Context(), remote.Request{
		Op:           remote.OpAsk,
		Prompt:       prompt,
		MaxTokens:    maxTokens,
		Capabilities: caps,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Reply ===")
	if resp.Text != "" {
		fmt.Fprintln(out, resp.Text)
	}
	printToolUse(out, resp.ToolInvocations)
	return nil
}
