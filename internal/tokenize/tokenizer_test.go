package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizer_LowercasesWords(t *testing.T) {
	tok := New(false)
	tokens := tok.Tokenize("Hello World")

	var words []string
	for _, tk := range tokens {
		if tk.kind.IsWord() {
			words = append(words, tk.lemma)
		}
	}

	assert.Equal(t, []string{"hello", "world"}, words)
}

func TestTokenizer_StemsWhenEnabled(t *testing.T) {
	tok := New(true)
	tokens := tok.Tokenize("running")

	var words []string
	for _, tk := range tokens {
		if tk.kind.IsWord() {
			words = append(words, tk.lemma)
		}
	}

	assert.Equal(t, []string{"run"}, words)
}

func TestClassifySeparator_HardVsSoft(t *testing.T) {
	assert.Equal(t, KindHardSeparator, classifySeparator(". "))
	assert.Equal(t, KindHardSeparator, classifySeparator("!"))
	assert.Equal(t, KindSoftSeparator, classifySeparator(" "))
	assert.Equal(t, KindSoftSeparator, classifySeparator(", "))
}

func TestTokenizer_MarksStopWords(t *testing.T) {
	tok := New(false)
	tokens := tok.Tokenize("the dog")

	var kinds []Kind
	for _, tk := range tokens {
		if tk.kind.IsWord() {
			kinds = append(kinds, tk.kind)
		}
	}

	assert.Equal(t, []Kind{KindStopWord, KindWord}, kinds)
}
