package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/schierlm/mnemonifier/pkg/mcp"
	"github.com/schierlm/mnemonifier/pkg/mnemonic"
	"github.com/schierlm/mnemonifier/pkg/observability"
)

// Output formats of table list.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatYAML     = "yaml"
)

// Table command errors.
var (
	ErrUnknownFormat    = errors.New("unknown output format")
	ErrInvalidCodepoint = errors.New("invalid codepoint")
	ErrLookupFailed     = errors.New("lookup failed")
)

// NewTableCommand creates the table subcommand group.
func NewTableCommand(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Inspect the mnemonic table",
	}

	cmd.AddCommand(newTableInfoCommand(opts))
	cmd.AddCommand(newTableLookupCommand(opts))
	cmd.AddCommand(newTableListCommand(opts))

	return cmd
}

func newTableInfoCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show size and fingerprint of the active table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd, opts, observability.ModeCLI, nil)
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			source := sess.cfg.Codec.Table
			if source == "" {
				source = "embedded"
			}

			return writeTableInfo(cmd.OutOrStdout(), source, sess.codec.Table())
		},
	}
}

func writeTableInfo(w io.Writer, source string, tbl *mnemonic.Table) error {
	size, err := tbl.WriteTo(io.Discard)
	if err != nil {
		return fmt.Errorf("measure table: %w", err)
	}

	var first, last rune

	for r := range tbl.All() {
		if first == 0 {
			first = r
		}

		last = r
	}

	coverage := "empty"
	if tbl.Len() > 0 {
		coverage = fmt.Sprintf("U+%04X..U+%04X", first, last)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false

	tw.AppendRows([]table.Row{
		{"Source", source},
		{"Entries", humanize.Comma(int64(tbl.Len()))},
		{"Range", coverage},
		{"Serialized", humanize.Bytes(uint64(size))},
		{"Fingerprint", tbl.Fingerprint()},
	})
	tw.Render()

	return nil
}

func newTableLookupCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <query>...",
		Short: "Look up characters, codepoints (U+00FC) or mnemonics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, opts, observability.ModeCLI, nil)
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Codepoint", "Char", "Mnemonic", "Encoded"})

			failed := 0

			for _, query := range args {
				out, lookupErr := mcp.Lookup(sess.codec.Table(), query)
				if lookupErr != nil {
					failed++

					color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "%v\n", lookupErr)

					continue
				}

				tw.AppendRow(table.Row{out.Codepoint, out.Character, out.Mnemonic, sess.codec.Encode(out.Character)})
			}

			if failed < len(args) {
				tw.Render()
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d queries", ErrLookupFailed, failed, len(args))
			}

			return nil
		},
	}
}

// listEntry is one row of table list.
type listEntry struct {
	Codepoint string `yaml:"codepoint"`
	Character string `yaml:"character"`
	Mnemonic  string `yaml:"mnemonic"`
}

func newTableListCommand(opts *GlobalOptions) *cobra.Command {
	var (
		format string
		from   string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the mappings of the active table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lo, err := parseCodepointFlag(from)
			if err != nil {
				return err
			}

			hi, err := parseCodepointFlag(to)
			if err != nil {
				return err
			}

			sess, err := openSession(cmd, opts, observability.ModeCLI, nil)
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			var entries []listEntry

			for r, token := range sess.codec.Table().All() {
				if r < lo || r > hi {
					continue
				}

				entries = append(entries, listEntry{
					Codepoint: fmt.Sprintf("U+%04X", r),
					Character: string(r),
					Mnemonic:  token,
				})
			}

			return writeList(cmd.OutOrStdout(), entries, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatTable, "output format (table, markdown, csv, yaml)")
	cmd.Flags().StringVar(&from, "from", "U+0080", "first codepoint to list")
	cmd.Flags().StringVar(&to, "to", "U+FFFF", "last codepoint to list")

	return cmd
}

func writeList(w io.Writer, entries []listEntry, format string) error {
	if strings.EqualFold(format, FormatYAML) {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Codepoint", "Char", "Mnemonic"})

	for _, e := range entries {
		tw.AppendRow(table.Row{e.Codepoint, e.Character, e.Mnemonic})
	}

	switch strings.ToLower(format) {
	case FormatTable:
		tw.AppendFooter(table.Row{"Total", len(entries), ""})
		tw.Render()
	case FormatMarkdown:
		tw.RenderMarkdown()
	case FormatCSV:
		tw.RenderCSV()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return nil
}

// parseCodepointFlag accepts U+XXXX, 0xXXXX or bare hex.
func parseCodepointFlag(value string) (rune, error) {
	hex := strings.ToUpper(value)
	hex = strings.TrimPrefix(hex, "U+")
	hex = strings.TrimPrefix(hex, "0X")

	cp, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || cp > 0x10FFFF {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCodepoint, value)
	}

	return rune(cp), nil
}
