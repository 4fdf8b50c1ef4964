package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sandevgo/slimctx/internal/core"
	"github.com/sandevgo/slimctx/internal/optimizer"
	"github.com/spf13/cobra"
)

var (
	chatBudget        int
	chatNoDedupe      bool
	chatStrategy      string
	chatThreshold     float64
	chatKeepSystem    bool
	chatPreserveLastN int
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Optimize a chat conversation",
	Long: `Reads a JSON array of {"role","content"} messages from stdin, dedupes,
ranks and trims it to the token budget, and writes the kept messages as JSON
to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		var msgs []core.Message
		if err := json.NewDecoder(os.Stdin).Decode(&msgs); err != nil {
			return fmt.Errorf("decode messages: %w", err)
		}

		d := newDeps(ctx)

		budget := chatBudget
		if budget == 0 {
			budget = d.appCfg.DefaultBudget
		}
		strategy := chatStrategy
		if strategy == "" {
			strategy = d.appCfg.DefaultStrategy
		}
		threshold := chatThreshold
		if threshold == 0 {
			threshold = d.appCfg.DedupThreshold
		}
		preserveLastN := chatPreserveLastN
		if preserveLastN == 0 {
			preserveLastN = d.appCfg.PreserveLastN
		}
		preserveSystem := boolFlagOr(cmd.Flags(), "keep-system", chatKeepSystem, d.appCfg.PreserveSystem)

		result, err := d.opt.OptimizeChat(ctx, optimizer.ChatRequest{
			Messages:       msgs,
			Budget:         budget,
			SkipDedupe:     chatNoDedupe,
			Strategy:       optimizer.ParseStrategy(strategy),
			Threshold:      threshold,
			PreserveSystem: preserveSystem,
			PreserveLastN:  preserveLastN,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Messages); err != nil {
			return fmt.Errorf("encode messages: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "tokens: %d, removed: %d\n", result.TokenCount, len(result.Removed))
		return nil
	},
}

func init() {
	chatCmd.Flags().IntVarP(&chatBudget, "budget", "b", 0, "token budget for the kept conversation")
	chatCmd.Flags().BoolVar(&chatNoDedupe, "no-dedupe", false, "skip near-duplicate removal")
	chatCmd.Flags().StringVarP(&chatStrategy, "strategy", "s", "", "ranking strategy: relevance, recency or hybrid")
	chatCmd.Flags().Float64Var(&chatThreshold, "threshold", 0, "cosine similarity threshold for duplicates")
	chatCmd.Flags().BoolVar(&chatKeepSystem, "keep-system", true, "always keep system messages")
	chatCmd.Flags().IntVar(&chatPreserveLastN, "keep-last", 0, "always keep the last N messages")

	rootCmd.AddCommand(chatCmd)
}
