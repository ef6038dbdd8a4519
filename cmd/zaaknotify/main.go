package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute() error {
	root := &cobra.Command{
		Use:   "zaaknotify",
		Short: "Case update notification service for ZGW webhooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())

	return root.Execute()
}
