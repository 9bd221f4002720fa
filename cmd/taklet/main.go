// Command taklet is the thin outer binary wrapping the core engine: a single
// cobra.Command tree over play, aimatch, analyze, game, bench, selfplay, and
// mem_usage, unified behind one executable since none of them carry enough
// of their own flags to justify a separate main package.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)

	root := newRootCmd()
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taklet",
		Short: "PUCT-guided Tak engine driven by a linear value/policy model",
	}
	root.PersistentFlags().Int("board-size", 5, "board size, 3..8")
	root.PersistentFlags().String("value-weights", "", "path to the value model's weight file")
	root.PersistentFlags().String("policy-weights", "", "path to the policy model's weight file")
	root.PersistentFlags().String("config", "", "comma-separated key=value engine configuration overrides")

	root.AddCommand(newPlayCmd())
	root.AddCommand(newAIMatchCmd())
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newGameCmd())
	root.AddCommand(newBenchCmd())
	root.AddCommand(newSelfplayCmd())
	root.AddCommand(newMemUsageCmd())
	return root
}
