package config

import (
	"fmt"

	"github.com/schierlm/mnemonifier/pkg/annotate"
	"github.com/schierlm/mnemonifier/pkg/codec"
	"github.com/schierlm/mnemonifier/pkg/mnemonic"
)

// NewCodec builds the codec described by cfg.
func NewCodec(cfg CodecConfig) (*codec.Codec, error) {
	var opts []codec.Option

	if cfg.Table != "" {
		table, err := mnemonic.LoadFile(cfg.Table)
		if err != nil {
			return nil, err
		}

		opts = append(opts, codec.WithTable(table))
	}

	switch cfg.Annotator {
	case AnnotatorUnidecode:
		opts = append(opts, codec.WithAnnotator(annotate.Cached(annotate.Unidecode, cfg.AnnotatorCacheSize)))
	case AnnotatorNone, "":
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAnnotator, cfg.Annotator)
	}

	return codec.New(opts...)
}

// Mode returns the decode mode selected by cfg.
func (cfg CodecConfig) Mode() codec.Mode {
	if cfg.Strict {
		return codec.Strict
	}

	return codec.Lax
}
