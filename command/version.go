package command

import "github.com/spf13/cobra"

// Version is set at build time with -ldflags "-X github.com/mqtools/mq/command.Version=...".
var Version = "dev"

type versionInfo struct {
	Version string `json:"version"`
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, &versionInfo{Version: Version})
		},
	}
}
