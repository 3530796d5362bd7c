package quizgen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"quizgod-api/internal/models"
)

// DefaultMaxSourceLength bounds how much of the source document is forwarded
// to the provider.
const DefaultMaxSourceLength = 15000

// systemPrompt is sent with every generation request. It reiterates the
// marking convention because models drift on it otherwise.
const systemPrompt = "You are a quiz generator. Always mark the single correct answer " +
	"option with a trailing asterisk (*) and output nothing except the numbered questions."

// SystemPrompt returns the fixed system instruction for generation calls.
func SystemPrompt() string {
	return systemPrompt
}

// BuildPrompt assembles the generation instruction block: subject and
// difficulty, one instruction line per requested question type, the source
// text (truncated to maxSourceLength), and the formatting rules.
func BuildPrompt(req *models.GenerateQuizRequest, maxSourceLength int) string {
	if maxSourceLength <= 0 {
		maxSourceLength = DefaultMaxSourceLength
	}

	source := req.PDFText
	if len(source) > maxSourceLength {
		// Back up to a rune boundary so the cut never leaves an invalid
		// UTF-8 tail in the prompt.
		cut := maxSourceLength
		for cut > 0 && !utf8.RuneStart(source[cut]) {
			cut--
		}
		source = source[:cut]
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Create a %s difficulty quiz about %s based on the source material below.\n\n",
		strings.ToUpper(req.Difficulty), req.Subject)

	b.WriteString("Generate the following questions:\n")
	for _, tag := range models.QuestionTypeOrder {
		count := req.QuestionTypes[tag]
		if count <= 0 {
			continue
		}
		switch tag {
		case models.TypeMultipleChoice:
			fmt.Fprintf(&b, "- %d multiple choice questions. Each must have exactly 4 options "+
				"labeled A) through D), with the correct option marked by a trailing asterisk (*).\n", count)
		case models.TypeTrueFalse:
			fmt.Fprintf(&b, "- %d true/false questions with options A) True and B) False, "+
				"with the correct option marked by a trailing asterisk (*).\n", count)
		case models.TypeFillBlank:
			fmt.Fprintf(&b, "- %d fill-in-the-blank questions. After each question add a line "+
				"starting with \"ANSWER:\" containing the answer in 1-3 words. Answers are graded "+
				"case-insensitively.\n", count)
		}
	}

	b.WriteString("\nSOURCE MATERIAL:\n")
	b.WriteString(source)
	b.WriteString("\n\nFORMATTING RULES:\n")
	b.WriteString("- Begin your output immediately with \"1.\" and no introduction.\n")
	b.WriteString("- Number questions sequentially starting at 1.\n")
	b.WriteString("- Mark exactly one correct answer per question with a trailing asterisk (*).\n")
	b.WriteString("- Do not add any closing remarks after the final answer option.\n")

	return b.String()
}
