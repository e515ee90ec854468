package tokenize

import (
	"strings"

	"github.com/blevesearch/segment"
	snowballstem "github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"
)

// MaxWordLength is the longest lemma that will be handed to a caller;
// anything longer would not fit as a store key anyway.
const MaxWordLength = 512

// StopWords is the default set of English stop words still indexed as
// KindStopWord tokens (they contribute to proximity but are filtered at
// query time by callers that care to).
var StopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "were": true, "will": true,
	"with": true,
}

// Tokenizer splits text into a stream of rawTokens: words (stemmed),
// stop words, and hard/soft separators.
type Tokenizer struct {
	stem bool
}

// New returns a Tokenizer. When stem is true, word tokens are reduced
// to their English stem via snowballstem before being returned.
func New(stem bool) *Tokenizer {
	return &Tokenizer{stem: stem}
}

// Tokenize segments text and returns the resulting rawTokens in order.
func (t *Tokenizer) Tokenize(text string) []rawToken {
	var tokens []rawToken

	seg := segment.NewWordSegmenterDirect([]byte(text))
	for seg.Segment() {
		raw := string(seg.Bytes())
		if raw == "" {
			continue
		}

		switch seg.Type() {
		case segment.Letter, segment.Number, segment.Kana, segment.Ideo:
			lemma := strings.ToLower(raw)
			if t.stem && seg.Type() == segment.Letter {
				lemma = stemEnglish(lemma)
			}
			kind := KindWord
			if StopWords[lemma] {
				kind = KindStopWord
			}
			tokens = append(tokens, rawToken{kind: kind, lemma: lemma})
		default:
			tokens = append(tokens, rawToken{kind: classifySeparator(raw), lemma: raw})
		}
	}

	return tokens
}

func stemEnglish(word string) string {
	env := snowballstem.NewEnv(word)
	english.Stem(env)
	return env.Current()
}
