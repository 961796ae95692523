package reader

import (
	"fmt"
	"sync"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Segmenter splits a single whitespace-free word into smaller units.
type Segmenter interface {
	Segment(word string) []string
}

// KagomeSegmenter segments Japanese text using the IPA dictionary.
type KagomeSegmenter struct {
	t *tokenizer.Tokenizer
}

var (
	kagomeOnce sync.Once
	kagomeSeg  *KagomeSegmenter
	kagomeErr  error
)

// NewKagomeSegmenter returns the shared Japanese segmenter. The dictionary is
// large, so it is loaded once per process.
func NewKagomeSegmenter() (*KagomeSegmenter, error) {
	kagomeOnce.Do(func() {
		t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
		if err != nil {
			kagomeErr = fmt.Errorf("load kagome dictionary: %w", err)
			return
		}
		kagomeSeg = &KagomeSegmenter{t: t}
	})
	return kagomeSeg, kagomeErr
}

func (s *KagomeSegmenter) Segment(word string) []string {
	if !hasJapanese(word) {
		return []string{word}
	}
	var parts []string
	for _, tok := range s.t.Tokenize(word) {
		if tok.Surface == "" {
			continue
		}
		parts = append(parts, tok.Surface)
	}
	return parts
}

// SegmenterFor picks a segmenter for a study language. mode is "auto", "on"
// or "off"; auto enables segmentation only for Japanese.
func SegmenterFor(lang, mode string) (Segmenter, error) {
	switch mode {
	case "off":
		return nil, nil
	case "on":
	default:
		if lang != "ja" {
			return nil, nil
		}
	}
	seg, err := NewKagomeSegmenter()
	if err != nil {
		return nil, err
	}
	return seg, nil
}

func hasJapanese(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}
