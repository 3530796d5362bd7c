package quizgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTrimsPreambleAndTrailer(t *testing.T) {
	raw := "Sure! Here are your questions:\n1. Q?\nA) x\nB) y*\n\nHope that helps!"
	assert.Equal(t, "1. Q?\nA) x\nB) y*", Sanitize(raw))
}

func TestSanitizeLeadingTrimIsNoOpWhenAlreadyClean(t *testing.T) {
	clean := "1. Q?\nA) x\nB) y*"
	assert.Equal(t, clean, Sanitize(clean))
}

func TestSanitizeIsIdempotent(t *testing.T) {
	raw := "Of course. Here is your quiz.\n\n1. What is DNA?\nA) A protein\nB) A nucleic acid*\nC) A lipid\nD) A sugar\n\nLet me know if you need more!"
	once := Sanitize(raw)
	assert.Equal(t, once, Sanitize(once))
}

func TestSanitizeKeepsTextWithoutQuestionMarker(t *testing.T) {
	raw := "No numbered questions here.\nA) still an option*"
	// No "1. " marker: the head is untouched; the tail still trims at the
	// last option line (which is the final line, so nothing changes).
	assert.Equal(t, raw, Sanitize(raw))
}

func TestSanitizeKeepsTailWithoutOptionLines(t *testing.T) {
	raw := "1. Name the powerhouse of the cell.\nANSWER: mitochondria"
	assert.Equal(t, raw, Sanitize(raw))
}

func TestSanitizeHandlesLowercaseAndVariedPunctuation(t *testing.T) {
	raw := "1. Q?\na. x\nb: y*\nThanks for playing!"
	assert.Equal(t, "1. Q?\na. x\nb: y*", Sanitize(raw))
}

func TestSanitizeDropsTrailerAfterMultipleQuestions(t *testing.T) {
	raw := "Here you go:\n" +
		"1. First?\nA) one*\nB) two\n" +
		"2. Second?\nA) True*\nB) False\n" +
		"\nGood luck with your quiz!\nFeel free to ask for more."
	want := "1. First?\nA) one*\nB) two\n2. Second?\nA) True*\nB) False"
	assert.Equal(t, want, Sanitize(raw))
}

func TestSanitizeEmptyInput(t *testing.T) {
	assert.Equal(t, "", Sanitize(""))
}
