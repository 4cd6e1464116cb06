package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/schierlm/mnemonifier/pkg/observability"
)

// Verify failures.
var (
	ErrRoundTripMismatch = errors.New("round trip changed the text")
	ErrNotASCII          = errors.New("encoded text is not ASCII")
)

// NewVerifyCommand creates the verify subcommand.
func NewVerifyCommand(opts *GlobalOptions) *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "verify [text...]",
		Short: "Check that text survives an encode/decode round trip",
		Long: `Encode the input, decode the result strictly, and compare it with the input.

Invalid UTF-8 bytes are encoded as U+FFFD and therefore do not round trip;
the differences are shown as a character diff.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, opts, observability.ModeCLI, nil)
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			input, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			ctx, done := sess.inst.Start(cmd.Context(), "verify", len(input))

			encoded := sess.codec.Encode(input)

			decoded, err := sess.codec.DecodeStrict(encoded)
			if err == nil {
				err = checkRoundTrip(cmd.OutOrStdout(), input, encoded, decoded, show)
			}

			done(err)

			if err != nil {
				sess.logger.DebugContext(ctx, "round trip failed", "error", err)
			}

			return err
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "print the encoded text")

	return cmd
}

func checkRoundTrip(w io.Writer, input, encoded, decoded string, show bool) error {
	if show {
		fmt.Fprintln(w, encoded)
	}

	for i := range len(encoded) {
		if encoded[i] >= 0x80 {
			color.New(color.FgRed).Fprintf(w, "✘ non-ASCII byte at offset %d\n", i)

			return ErrNotASCII
		}
	}

	sizes := fmt.Sprintf("%s in, %s encoded", humanize.Bytes(uint64(len(input))), humanize.Bytes(uint64(len(encoded))))

	if decoded == input {
		color.New(color.FgGreen).Fprintf(w, "✔ round trip ok (%s)\n", sizes)

		return nil
	}

	color.New(color.FgRed).Fprintf(w, "✘ round trip changed the text (%s)\n", sizes)

	if diff, changed := renderDiff(input, decoded); changed {
		fmt.Fprintf(w, "  %s\n", diff)
	} else {
		fmt.Fprintln(w, "  the input holds invalid UTF-8, which is encoded as U+FFFD")
	}

	return ErrRoundTripMismatch
}

// renderDiff shows deletions as [-x-] and insertions as {+x+}. The diff
// works on runes, so byte-level differences in invalid UTF-8 report no change.
func renderDiff(before, after string) (string, bool) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	var (
		sb      strings.Builder
		changed bool
	)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			sb.WriteString(color.New(color.FgRed).Sprint("[-" + d.Text + "-]"))

			changed = true
		case diffmatchpatch.DiffInsert:
			sb.WriteString(color.New(color.FgGreen).Sprint("{+" + d.Text + "+}"))

			changed = true
		}
	}

	return sb.String(), changed
}
