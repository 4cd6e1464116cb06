// Package main generates the mnemonic table embedded in pkg/mnemonic from the
// RFC 1345 mnemonic listing. The listing is read from the RFC text or from
// the "mnemonic" FIGfont, which carries the same mnemonics per codepoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/pierrec/lz4/v4"

	"github.com/schierlm/mnemonifier/pkg/mnemonic"
)

const defaultSource = "https://www.rfc-editor.org/rfc/rfc1345.txt"

func main() {
	var (
		src      string
		output   string
		compress bool
	)

	flag.StringVar(&src, "src", defaultSource, "RFC 1345 text or mnemonic FIGfont, as a file or URL")
	flag.StringVar(&output, "o", "pkg/mnemonic/mnemonics.dat", "Output table file")
	flag.BoolVar(&compress, "lz4", false, "Compress the output with LZ4")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	table, err := run(ctx, src, output, compress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	info, err := os.Stat(output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d mnemonics to %s (%s, blake3 %s)\n",
		table.Len(), output, humanize.Bytes(uint64(info.Size())), table.Fingerprint()[:16])
}

func run(ctx context.Context, src, output string, compress bool) (*mnemonic.Table, error) {
	in, err := openSource(ctx, src)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	rfc, err := parseListing(in)
	if err != nil {
		return nil, err
	}

	table, err := generate(rfc)
	if err != nil {
		return nil, err
	}

	if err := writeTable(table, output, compress); err != nil {
		return nil, err
	}

	if err := verify(table, output); err != nil {
		return nil, err
	}

	return table, nil
}

func writeTable(table *mnemonic.Table, path string, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table file: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close table file: %w", closeErr)
		}
	}()

	var w io.Writer = f

	if compress {
		zw := lz4.NewWriter(f)

		defer func() {
			if closeErr := zw.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("finish lz4 frame: %w", closeErr)
			}
		}()

		w = zw
	}

	if _, err := table.WriteTo(w); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}

// verify reloads path and checks it holds exactly the mappings of want.
func verify(want *mnemonic.Table, path string) error {
	got, err := mnemonic.LoadFile(path)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	if got.Len() != want.Len() {
		return fmt.Errorf("reload: %d mnemonics, expected %d", got.Len(), want.Len())
	}

	for r, token := range want.All() {
		if back, ok := got.Lookup(r); !ok || back != token {
			return fmt.Errorf("reload: U+%04X is %q, expected %q", r, back, token)
		}
	}

	return nil
}
