package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wenzapen/tagcrawl/cmd/run"
	"github.com/wenzapen/tagcrawl/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version",
		Long:  "print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version.Fprint(cmd.OutOrStdout())
		},
	}
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tagcrawl",
		Short: "declarative web crawler driven by tag markup",
	}
	rootCmd.AddCommand(run.NewCmd(), newVersionCmd())
	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}
