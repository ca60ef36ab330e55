package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"example.com/notes-ai/internal/tracing"
)

// FallbackText stands in for a successful response that carried no text.
const FallbackText = "Could not generate response"

// Generator turns one prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// UpstreamError reports a non-success or unreadable response from the model service.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return "API request failed: " + e.Message
}

type Parameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generateRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters Parameters `json:"parameters"`
}

// HuggingFace calls a text-generation inference endpoint.
type HuggingFace struct {
	endpoint string
	token    string
	params   Parameters
	client   *http.Client
}

// NewHuggingFace builds a client whose every call is bounded by timeout.
// The prompt is never echoed back in the output.
func NewHuggingFace(endpoint, token string, maxNewTokens int, temperature float64, timeout time.Duration) *HuggingFace {
	return &HuggingFace{
		endpoint: endpoint,
		token:    token,
		params: Parameters{
			MaxNewTokens:   maxNewTokens,
			Temperature:    temperature,
			ReturnFullText: false,
		},
		client: &http.Client{Timeout: timeout},
	}
}

func (h *HuggingFace) Generate(ctx context.Context, prompt string) (text string, err error) {
	ctx, span := tracing.StartSpan(ctx, "ai.Generate")
	defer func() { tracing.End(span, err) }()

	body, err := json.Marshal(generateRequest{Inputs: prompt, Parameters: h.params})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read model response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	text, err = DecodeV1(raw)
	if err != nil {
		return "", err
	}
	if text == "" {
		return FallbackText, nil
	}
	return text, nil
}

type choiceV1 struct {
	Text    string `json:"text"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type objectV1 struct {
	GeneratedText string     `json:"generated_text"`
	Choices       []choiceV1 `json:"choices"`
}

// DecodeV1 extracts generated text from the response shapes pinned as
// version 1 of the upstream contract, in this order:
//
//	[{"generated_text": "..."}]
//	{"generated_text": "..."}
//	{"choices": [{"text": "..."}]}
//	{"choices": [{"message": {"content": "..."}}]}
//
// The first populated field wins. A well formed body with none of them
// populated yields "".
func DecodeV1(raw []byte) (string, error) {
	var list []objectV1
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if text := item.first(); text != "" {
				return text, nil
			}
		}
		return "", nil
	}

	var obj objectV1
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", &UpstreamError{Status: http.StatusOK, Message: "malformed response"}
	}
	return obj.first(), nil
}

func (o objectV1) first() string {
	if o.GeneratedText != "" {
		return o.GeneratedText
	}
	for _, c := range o.Choices {
		if c.Text != "" {
			return c.Text
		}
		if c.Message.Content != "" {
			return c.Message.Content
		}
	}
	return ""
}
