package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than budget", "hello", 10, "hello"},
		{"exactly budget", "hello", 5, "hello"},
		{"cut ascii", "hello world", 5, "hello"},
		{"cut multibyte by character", "héllo wörld", 7, "héllo w"},
		{"emoji counts as one character", "ab😀cd", 3, "ab😀"},
		{"zero budget", "hello", 0, ""},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}

func TestSummaryRequestTruncatesSource(t *testing.T) {
	source := strings.Repeat("Lorem ipsum dolor sit amet. ", 800)[:20000]

	req := SummaryRequest(source, "en")

	require.Len(t, req.Messages, 1)
	msg := req.Messages[0]
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, summaryInstruction+source[:MaxSourceChars], msg.Content)
	assert.Len(t, msg.Content, len(summaryInstruction)+MaxSourceChars)
	assert.Equal(t, SummaryMaxTokens, req.MaxTokens)
	assert.Equal(t, 0.7, req.Temperature)
}

func TestSummaryRequestKeepsShortSource(t *testing.T) {
	req := SummaryRequest("short page", "en")
	assert.Equal(t, summaryInstruction+"short page", req.Messages[0].Content)
}

func TestSummaryRequestLanguagePrefix(t *testing.T) {
	tests := []struct {
		lang   string
		prefix string
	}{
		{"en", ""},
		{"", ""},
		{"nl", "Respond in Dutch. "},
		{"fr", "Respond in French. "},
		{"de", "Respond in German. "},
		{"es", "Respond in Spanish. "},
		{"it", "Respond in English. "},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			req := SummaryRequest("text", tt.lang)
			assert.Equal(t, tt.prefix+summaryInstruction+"text", req.Messages[0].Content)
		})
	}
}

func TestAnswerRequest(t *testing.T) {
	req := AnswerRequest("Go is a language.", "Who made it?")

	require.Len(t, req.Messages, 2)
	assert.Equal(t, Message{Role: RoleSystem, Content: "Answer questions based on the provided summary."}, req.Messages[0])
	assert.Equal(t, Message{Role: RoleUser, Content: "Summary: Go is a language.\n\nQuestion: Who made it?"}, req.Messages[1])
	assert.Equal(t, AnswerMaxTokens, req.MaxTokens)
	assert.Equal(t, 0.7, req.Temperature)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", LanguageName("en"))
	assert.Equal(t, "Dutch", LanguageName("nl"))
	assert.Equal(t, "English", LanguageName("xx"))
	assert.Equal(t, "English", LanguageName(""))
}
