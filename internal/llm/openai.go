package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"
)

// ErrMissingCredential is returned when Complete is called without a credential.
var ErrMissingCredential = errors.New("api key required")

// OpenAIClient calls an OpenAI-compatible Chat Completions API. The
// credential is supplied per call since it belongs to the user, not the
// deployment.
type OpenAIClient struct {
	model  string
	client *openai.Client
}

const defaultChatTimeout = 30 * time.Second

// NewOpenAIClient builds a client for the endpoint rooted at baseURL.
func NewOpenAIClient(baseURL, model string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if model == "" {
		return nil, fmt.Errorf("model required")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	opts = append([]option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}, opts...)
	cli := openai.NewClient(opts...)
	return &OpenAIClient{
		model:  model,
		client: &cli,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, credential string, req ChatRequest) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	if credential == "" {
		return "", ErrMissingCredential
	}
	if req.Model == "" {
		req.Model = c.model
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(reqCtx, buildParams(req), option.WithAPIKey(credential))
	if err != nil {
		return "", toAPIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrMalformedResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func buildParams(req ChatRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    buildMessages(req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	return params
}

func buildMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		case RoleAssistant:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		default:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		}
	}
	return out
}

// toAPIError converts SDK failures into APIError, keeping the provider's
// human-readable message when the body carries one.
func toAPIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Message:    errorMessage(apiErr),
			Err:        err,
		}
	}
	return &APIError{Err: err}
}

func errorMessage(apiErr *openai.Error) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		body, err := io.ReadAll(apiErr.Response.Body)
		if err == nil {
			if msg := gjson.GetBytes(body, "error.message"); msg.Type == gjson.String && msg.String() != "" {
				return msg.String()
			}
		}
	}
	return DefaultErrorMessage
}
