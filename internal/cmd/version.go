package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/singlebase/singlebase-go/internal/api"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			if isJSON(cmd) {
				_ = printJSON(cmd, map[string]any{
					"version":   version,
					"client_id": api.ClientID,
					"go":        runtime.Version(),
				})
				return
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "singlebase %s (%s, %s)\n", version, api.ClientID, runtime.Version())
		},
	}
}
