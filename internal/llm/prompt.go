package llm

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	// MaxSourceChars is the hard cutoff applied to page text before prompting.
	MaxSourceChars = 12000

	Temperature      = 0.7
	SummaryMaxTokens = 1000
	AnswerMaxTokens  = 500

	summaryInstruction = "Please provide a comprehensive summary of this text in 3-4 paragraphs:\n\n"
	answerInstruction  = "Answer questions based on the provided summary."
)

// SupportedLanguages lists the response languages offered for summaries.
var SupportedLanguages = []string{"en", "nl", "fr", "de", "es"}

// SummaryRequest builds the summarize call for content, answering in lang.
func SummaryRequest(content, lang string) ChatRequest {
	return ChatRequest{
		Messages: []Message{{
			Role:    RoleUser,
			Content: languagePrefix(lang) + summaryInstruction + Truncate(content, MaxSourceChars),
		}},
		Temperature: Temperature,
		MaxTokens:   SummaryMaxTokens,
	}
}

// AnswerRequest builds the follow-up call answering question from summary.
func AnswerRequest(summary, question string) ChatRequest {
	return ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: answerInstruction},
			{Role: RoleUser, Content: fmt.Sprintf("Summary: %s\n\nQuestion: %s", summary, question)},
		},
		Temperature: Temperature,
		MaxTokens:   AnswerMaxTokens,
	}
}

// Truncate keeps the first max characters of s. Anything beyond is dropped.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// LanguageName returns the English name of a supported language code;
// anything else is English.
func LanguageName(code string) string {
	for _, supported := range SupportedLanguages {
		if code != supported {
			continue
		}
		tag, err := language.Parse(code)
		if err != nil {
			break
		}
		return display.Languages(language.English).Name(tag)
	}
	return "English"
}

func languagePrefix(lang string) string {
	if lang == "" || lang == "en" {
		return ""
	}
	return fmt.Sprintf("Respond in %s. ", LanguageName(lang))
}
