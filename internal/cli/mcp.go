package cli

import (
	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/mcp"
)

// NewMCPCommand creates the mcp command.
func NewMCPCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve records and history as an MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol, so logs must go to stderr.
			return withSession(rootOpts, cmd, func(s *session) error {
				srv := mcp.New(s.app.Records, s.app.Tracker, rootOpts.Version, s.log.With("component", "mcp"))
				s.log.Info("mcp server starting", "transport", "stdio")
				return mcp.ServeStdio(srv)
			})
		},
	}
}
