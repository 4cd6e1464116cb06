package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/schierlm/mnemonifier/pkg/codec"
	"github.com/schierlm/mnemonifier/pkg/config"
	"github.com/schierlm/mnemonifier/pkg/observability"
)

// NewEncodeCommand creates the encode subcommand.
func NewEncodeCommand(opts *GlobalOptions) *cobra.Command {
	var annotator string

	cmd := &cobra.Command{
		Use:   "encode [text...]",
		Short: "Encode text to mnemonic ASCII",
		Long: `Encode the arguments, or stdin when there are none, to mnemonic ASCII.

With arguments the output ends with a newline; stdin is encoded as is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, opts, observability.ModeCLI, func(cfg *config.Config) {
				if cmd.Flags().Changed("annotator") {
					cfg.Codec.Annotator = annotator
				}
			})
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			input, fromArgs, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			_, done := sess.inst.Start(cmd.Context(), "encode", len(input))
			encoded := sess.codec.Encode(input)
			done(nil)

			return writeOutput(cmd, encoded, fromArgs)
		},
	}

	cmd.Flags().StringVar(&annotator, "annotator", config.AnnotatorNone, "hint source for unmapped characters (none, unidecode)")

	return cmd
}

// NewDecodeCommand creates the decode subcommand.
func NewDecodeCommand(opts *GlobalOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "decode [text...]",
		Short: "Decode mnemonic ASCII back to text",
		Long: `Decode the arguments, or stdin when there are none.

Lax decoding passes malformed escapes through unchanged. With --strict the
first malformed escape is reported with its position and the command fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, opts, observability.ModeCLI, func(cfg *config.Config) {
				if cmd.Flags().Changed("strict") {
					cfg.Codec.Strict = strict
				}
			})
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			input, fromArgs, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			ctx, done := sess.inst.Start(cmd.Context(), "decode", len(input))
			decoded, err := sess.codec.Decode(input, sess.cfg.Codec.Mode())
			done(err)

			if err != nil {
				sess.logger.DebugContext(ctx, "decode rejected input", slog.Any("error", err))

				var decodeErr *codec.DecodeError
				if errors.As(err, &decodeErr) {
					printDiagnostic(cmd.ErrOrStderr(), decodeErr)
				}

				return err
			}

			return writeOutput(cmd, decoded, fromArgs)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "reject malformed escapes")

	return cmd
}

// printDiagnostic shows the input line holding the failing escape with a
// caret under its first byte.
func printDiagnostic(w io.Writer, decodeErr *codec.DecodeError) {
	input, offset := decodeErr.Input, decodeErr.Offset
	offset = min(max(offset, 0), len(input))

	start := strings.LastIndexByte(input[:offset], '\n') + 1

	end := strings.IndexByte(input[offset:], '\n')
	if end < 0 {
		end = len(input)
	} else {
		end += offset
	}

	lineNo := strings.Count(input[:start], "\n") + 1
	column := text.RuneWidthWithoutEscSequences(input[start:offset])

	color.New(color.FgRed, color.Bold).Fprint(w, "error")
	fmt.Fprintf(w, ": %v at line %d, column %d\n", decodeErr.Reason, lineNo, column+1)
	fmt.Fprintf(w, "  %s\n", input[start:end])
	fmt.Fprintf(w, "  %s", strings.Repeat(" ", column))
	color.New(color.FgYellow, color.Bold).Fprintln(w, "^")
}
