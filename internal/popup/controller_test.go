package popup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"summarai/internal/extract"
	"summarai/internal/llm"
	"summarai/internal/render"
	"summarai/internal/settings"
	"summarai/internal/theme"
)

// recordingView keeps every intermediate state and rendered chunk.
type recordingView struct {
	render.Buffer
	states []State
}

func (v *recordingView) Update(st State) { v.states = append(v.states, st) }

func (v *recordingView) statuses() []string {
	var out []string
	for _, st := range v.states {
		if st.Status.Message != "" {
			out = append(out, st.Status.Message)
		}
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(t *testing.T, client llm.Client, ex extract.Extractor, credential string) (*Controller, *settings.MemoryStore) {
	t.Helper()
	store := settings.NewMemoryStore()
	if credential != "" {
		require.NoError(t, store.SetCredential(context.Background(), credential))
	}
	return New(client, ex, store, render.Typewriter{}, testLogger()), store
}

var pageSource = SummarizeInput{Source: extract.Source{URL: "https://example.com/post"}, Language: "en"}

func TestSummarizeSuccess(t *testing.T) {
	ex := new(extract.MockExtractor)
	client := new(llm.MockClient)
	ex.On("Extract", mock.Anything, pageSource.Source).Return("page text", nil).Once()
	client.On("Complete", mock.Anything, "gsk_key", llm.SummaryRequest("page text", "en")).
		Return("one two three four five", nil).Once()
	c, _ := newTestController(t, client, ex, "gsk_key")
	view := &recordingView{}

	st, err := c.Summarize(context.Background(), State{}, pageSource, view)

	require.NoError(t, err)
	assert.Equal(t, "one two three four five", st.Summary)
	assert.True(t, st.QAVisible)
	assert.False(t, st.Summarizing)
	assert.Equal(t, Status{}, st.Status)
	assert.Equal(t, []string{"one two three ", "four five "}, view.Chunks())
	assert.Equal(t, []string{StatusFetching, StatusGenerating}, view.statuses())
	assert.True(t, view.states[0].Summarizing, "summarize action is disabled while requesting")
	ex.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestSummarizeTruncatesPageText(t *testing.T) {
	page := strings.Repeat("x", 20000)
	ex := new(extract.MockExtractor)
	client := new(llm.MockClient)
	ex.On("Extract", mock.Anything, mock.Anything).Return(page, nil).Once()
	client.On("Complete", mock.Anything, "k", mock.MatchedBy(func(req llm.ChatRequest) bool {
		return len(req.Messages) == 1 && strings.HasSuffix(req.Messages[0].Content, ":\n\n"+page[:12000])
	})).Return("ok", nil).Once()
	c, _ := newTestController(t, client, ex, "k")

	_, err := c.Summarize(context.Background(), State{}, pageSource, Silent(render.Discard))

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSummarizeInvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	}))
	defer srv.Close()
	client, err := llm.NewOpenAIClient(srv.URL+"/openai/v1", "mixtral-8x7b-32768")
	require.NoError(t, err)
	ex := new(extract.MockExtractor)
	ex.On("Extract", mock.Anything, mock.Anything).Return("page text", nil).Once()
	c, _ := newTestController(t, client, ex, "bad-key")
	before := State{Summary: "previous summary", QAVisible: true}

	st, err := c.Summarize(context.Background(), before, pageSource, Silent(render.Discard))

	require.Error(t, err)
	assert.Equal(t, Status{Message: "Error: invalid key", Kind: KindError}, st.Status)
	assert.False(t, st.Summarizing, "summarize action is enabled again")
	assert.Equal(t, "previous summary", st.Summary)
	assert.True(t, st.Failed())
}

func TestSummarizeExtractFailure(t *testing.T) {
	ex := new(extract.MockExtractor)
	client := new(llm.MockClient)
	ex.On("Extract", mock.Anything, mock.Anything).Return("", extract.ErrNoContent).Once()
	c, _ := newTestController(t, client, ex, "k")

	st, err := c.Summarize(context.Background(), State{}, pageSource, Silent(render.Discard))

	assert.ErrorIs(t, err, extract.ErrNoContent)
	assert.Equal(t, "Error: no readable content", st.Status.Message)
	assert.False(t, st.Summarizing)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestSummarizeMalformedResponse(t *testing.T) {
	ex := new(extract.MockExtractor)
	client := new(llm.MockClient)
	ex.On("Extract", mock.Anything, mock.Anything).Return("text", nil).Once()
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", llm.ErrMalformedResponse).Once()
	c, _ := newTestController(t, client, ex, "k")

	st, err := c.Summarize(context.Background(), State{}, pageSource, Silent(render.Discard))

	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
	assert.True(t, st.Failed())
	assert.NotEmpty(t, st.Status.Message)
}

func TestSummarizeWithoutCredentialIsNoop(t *testing.T) {
	ex := new(extract.MockExtractor)
	client := new(llm.MockClient)
	c, _ := newTestController(t, client, ex, "")
	view := &recordingView{}

	st, err := c.Summarize(context.Background(), State{}, pageSource, view)

	require.NoError(t, err)
	assert.Equal(t, State{}, st)
	assert.Empty(t, view.states)
	ex.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestSummarizeBusy(t *testing.T) {
	c, _ := newTestController(t, new(llm.MockClient), new(extract.MockExtractor), "k")

	_, err := c.Summarize(context.Background(), State{Summarizing: true}, pageSource, Silent(render.Discard))

	assert.ErrorIs(t, err, ErrBusy)
}

func TestSummarizeSettingsFailure(t *testing.T) {
	store := new(settings.MockStore)
	store.On("Credential", mock.Anything).Return("", errors.New("redis down")).Once()
	c := New(new(llm.MockClient), new(extract.MockExtractor), store, render.Typewriter{}, testLogger())

	st, err := c.Summarize(context.Background(), State{}, pageSource, Silent(render.Discard))

	require.Error(t, err)
	assert.Contains(t, st.Status.Message, "redis down")
	store.AssertExpectations(t)
}

func TestAskWithoutSummaryNeverCallsModel(t *testing.T) {
	client := new(llm.MockClient)
	c, _ := newTestController(t, client, new(extract.MockExtractor), "k")

	st, err := c.Ask(context.Background(), State{}, "What is this about?", Silent(render.Discard))

	require.NoError(t, err)
	assert.Equal(t, State{}, st)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestAskBlankQuestionIsNoop(t *testing.T) {
	client := new(llm.MockClient)
	c, _ := newTestController(t, client, new(extract.MockExtractor), "k")
	before := State{Summary: "s", QAVisible: true}

	st, err := c.Ask(context.Background(), before, "   ", Silent(render.Discard))

	require.NoError(t, err)
	assert.Equal(t, before, st)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestAskSuccess(t *testing.T) {
	client := new(llm.MockClient)
	client.On("Complete", mock.Anything, "k", llm.AnswerRequest("the summary", "why?")).
		Return("because it is", nil).Once()
	c, _ := newTestController(t, client, new(extract.MockExtractor), "k")
	view := &recordingView{}

	st, err := c.Ask(context.Background(), State{Summary: "the summary", QAVisible: true}, "  why? ", view)

	require.NoError(t, err)
	assert.Equal(t, "because it is", st.Answer)
	assert.Equal(t, "the summary", st.Summary)
	assert.False(t, st.Asking)
	assert.Equal(t, "because it is ", view.String())
	assert.Equal(t, []string{StatusAnswering}, view.statuses())
	client.AssertExpectations(t)
}

func TestAskFailureKeepsSummary(t *testing.T) {
	client := new(llm.MockClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", &llm.APIError{StatusCode: 429, Message: "rate limited"}).Once()
	c, _ := newTestController(t, client, new(extract.MockExtractor), "k")

	st, err := c.Ask(context.Background(), State{Summary: "s"}, "q", Silent(render.Discard))

	require.Error(t, err)
	assert.Equal(t, "Error: rate limited", st.Status.Message)
	assert.Equal(t, "s", st.Summary)
	assert.False(t, st.Asking)
	assert.True(t, st.CanAsk())
}

func TestAskBusy(t *testing.T) {
	c, _ := newTestController(t, new(llm.MockClient), new(extract.MockExtractor), "k")

	_, err := c.Ask(context.Background(), State{Summary: "s", Asking: true}, "q", Silent(render.Discard))

	assert.ErrorIs(t, err, ErrBusy)
}

func TestCredentialRoundTrip(t *testing.T) {
	c, _ := newTestController(t, new(llm.MockClient), new(extract.MockExtractor), "")
	ctx := context.Background()

	prefs, err := c.Load(ctx)
	require.NoError(t, err)
	assert.False(t, prefs.CanSummarize)

	st, err := c.SaveCredential(ctx, State{}, "  gsk_abc123  ")
	require.NoError(t, err)
	assert.Equal(t, Status{Message: StatusKeySaved, Kind: KindSuccess}, st.Status)

	prefs, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gsk_abc123", prefs.Credential)
	assert.True(t, prefs.CanSummarize)
}

func TestSaveEmptyCredentialIsNoop(t *testing.T) {
	store := new(settings.MockStore)
	c := New(new(llm.MockClient), new(extract.MockExtractor), store, render.Typewriter{}, testLogger())

	st, err := c.SaveCredential(context.Background(), State{}, "   ")

	require.NoError(t, err)
	assert.Equal(t, State{}, st)
	store.AssertNotCalled(t, "SetCredential", mock.Anything, mock.Anything)
}

func TestSaveCredentialFailure(t *testing.T) {
	store := new(settings.MockStore)
	store.On("SetCredential", mock.Anything, "k").Return(errors.New("disk full")).Once()
	c := New(new(llm.MockClient), new(extract.MockExtractor), store, render.Typewriter{}, testLogger())

	st, err := c.SaveCredential(context.Background(), State{}, "k")

	require.Error(t, err)
	assert.Equal(t, Status{Message: StatusKeyFailed, Kind: KindError}, st.Status)
}

func TestSetTheme(t *testing.T) {
	c, store := newTestController(t, new(llm.MockClient), new(extract.MockExtractor), "")
	ctx := context.Background()

	name, palette, err := c.SetTheme(ctx, "forest")
	require.NoError(t, err)
	assert.Equal(t, theme.Forest, name)
	want, _ := theme.Lookup("forest")
	assert.Equal(t, want, palette)

	name, _, err = c.SetTheme(ctx, "neon")
	require.NoError(t, err)
	assert.Equal(t, theme.Default, name)
	stored, _ := store.Theme(ctx)
	assert.Equal(t, "default", stored)

	prefs, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, theme.Default, prefs.Theme)
}
