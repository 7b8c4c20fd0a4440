package main

import (
	"os"

	"github.com/spf13/cobra"

	"relalg/pkg/logging"
)

func addCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "run plan [query...]",
		Short: "Run the queries of a plan and print their results",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPlan}
	cmd.Flags().Int("parallel", 4, "number of queries run concurrently")
	cmd.Flags().Int("limit", 50, "rows printed per query, 0 for all")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "explain plan [query...]",
		Short: "Print the operator tree of each query",
		Args:  cobra.MinimumNArgs(1),
		RunE:  explainPlan}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "check plan",
		Short: "Compile a plan and report tables without a data source",
		Args:  cobra.ExactArgs(1),
		RunE:  checkPlan}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "demo",
		Short: "Run a built-in sample plan",
		Args:  cobra.NoArgs,
		RunE:  runDemo}
	cmd.Flags().Int("parallel", 4, "number of queries run concurrently")
	cmd.Flags().Int("limit", 50, "rows printed per query, 0 for all")
	root.AddCommand(cmd)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "relalg",
		Short:             "Run relational algebra plans over sorted tables",
		SilenceUsage:      true,
		PersistentPreRunE: initLogging,
		PersistentPostRun: func(*cobra.Command, []string) {
			logging.Close()
		},
	}
	root.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")
	root.PersistentFlags().String("log-format", "text", "log format, 'text' or 'json'")
	root.PersistentFlags().String("log-file", "", "log to this file instead of stderr")
	root.PersistentFlags().StringArray("table", nil, "bind a table to a CSV file, name=path")
	root.PersistentFlags().Bool("check-sorted", false, "fail when a merge input is out of key order")
	addCommands(root)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
