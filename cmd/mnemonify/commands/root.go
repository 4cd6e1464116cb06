// Package commands implements CLI command handlers for mnemonify.
package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/schierlm/mnemonifier/pkg/version"
)

// GlobalOptions holds the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	NoColor    bool
}

// NewRootCommand assembles the mnemonify command tree.
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "mnemonify",
		Short: "Mnemonify - reversible ASCII encoding of Unicode text",
		Long: `Mnemonify turns Unicode text into readable ASCII and back.

Characters with an RFC 1345 mnemonic become [mnemonic], e.g. F[u:]r,
everything else becomes a hex escape such as [#20AC] or [#20AC{EU}].

Commands:
  encode    Encode text to mnemonic ASCII
  decode    Decode mnemonic ASCII back to text
  verify    Check that text survives an encode/decode round trip
  table     Inspect the mnemonic table
  mcp       Serve the codec to AI agents over MCP`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.NoColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default mnemonify.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewEncodeCommand(opts))
	rootCmd.AddCommand(NewDecodeCommand(opts))
	rootCmd.AddCommand(NewVerifyCommand(opts))
	rootCmd.AddCommand(NewTableCommand(opts))
	rootCmd.AddCommand(NewMCPCommand(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mnemonify %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
