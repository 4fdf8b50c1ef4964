package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sandevgo/slimctx/internal/optimizer"
	"github.com/spf13/cobra"
)

var (
	optimizeQuery     string
	optimizeBudget    int
	optimizeNoDedupe  bool
	optimizeStrategy  string
	optimizeThreshold float64
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [chunk]...",
	Short: "Optimize free-text chunks for a query",
	Long: `Dedupes, ranks and trims context chunks so the assembled prompt fits the
token budget. Chunks come from arguments, or from stdin (one per line) when
no arguments are given. The optimized prompt is written to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		chunks := args
		if len(chunks) == 0 {
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				if line := strings.TrimSpace(scanner.Text()); line != "" {
					chunks = append(chunks, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
		}

		d := newDeps(ctx)

		budget := optimizeBudget
		if budget == 0 {
			budget = d.appCfg.DefaultBudget
		}
		strategy := optimizeStrategy
		if strategy == "" {
			strategy = d.appCfg.DefaultStrategy
		}
		threshold := optimizeThreshold
		if threshold == 0 {
			threshold = d.appCfg.DedupThreshold
		}

		result, err := d.opt.OptimizeChunks(ctx, optimizer.ChunkRequest{
			Query:      optimizeQuery,
			Chunks:     chunks,
			Budget:     budget,
			SkipDedupe: optimizeNoDedupe,
			Strategy:   optimizer.ParseStrategy(strategy),
			Threshold:  threshold,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.Prompt)
		fmt.Fprintf(cmd.ErrOrStderr(), "tokens: %d, dropped: %d\n", result.TokenCount, len(result.Dropped))
		return nil
	},
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeQuery, "query", "q", "", "user query the context should support (required)")
	optimizeCmd.Flags().IntVarP(&optimizeBudget, "budget", "b", 0, "token budget for the final prompt")
	optimizeCmd.Flags().BoolVar(&optimizeNoDedupe, "no-dedupe", false, "skip near-duplicate removal")
	optimizeCmd.Flags().StringVarP(&optimizeStrategy, "strategy", "s", "", "ranking strategy: relevance, recency or hybrid")
	optimizeCmd.Flags().Float64Var(&optimizeThreshold, "threshold", 0, "cosine similarity threshold for duplicates")
	optimizeCmd.MarkFlagRequired("query") //nolint:errcheck

	rootCmd.AddCommand(optimizeCmd)
}
