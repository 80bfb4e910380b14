package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
	"github.com/mand0ng/fitness-app-backend/internal/observability"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultTimeout = 180 * time.Second
	// Temperature is fixed; plans should be close to deterministic.
	Temperature float32 = 0.1
)

type Role string

const (
	RoleSystem    Role = goopenai.ChatMessageRoleSystem
	RoleUser      Role = goopenai.ChatMessageRoleUser
	RoleAssistant Role = goopenai.ChatMessageRoleAssistant
)

// Message is one turn of a stage conversation.
type Message struct {
	Role    Role
	Content string
}

type StageConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// HTTPClient is optional; tests point it at an httptest server.
	HTTPClient *http.Client
}

// StageClient sends one chat-completion request per plan stage to an
// OpenAI-compatible endpoint.
type StageClient struct {
	api     *goopenai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

func NewStageClient(log *logger.Logger, cfg StageConfig) (*StageClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPEN_ROUTER_API_KEY")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("missing OPEN_ROUTER_MODEL_NAME")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	apiCfg := goopenai.DefaultConfig(apiKey)
	apiCfg.BaseURL = baseURL
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}

	return &StageClient{
		api:     goopenai.NewClientWithConfig(apiCfg),
		model:   model,
		timeout: timeout,
		log:     log.With("client", "StageClient", "model", model),
	}, nil
}

// CallStage sends the accumulated conversation and returns the reply as
// minified JSON.
func (c *StageClient) CallStage(ctx context.Context, messages []Message) (string, error) {
	const op = "openai.call_stage"
	if len(messages) == 0 {
		return "", workout.NewError(workout.KindInternal, op, "no messages", nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]goopenai.ChatCompletionMessage, 0, len(messages)),
		Temperature: Temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(callCtx, req)
	if err != nil {
		kerr := classify(op, err)
		observability.Current().ObserveLLMRequest(c.model, statusLabel(err), time.Since(start))
		c.log.Warn("Stage request failed",
			"messages", len(messages),
			"kind", workout.KindOf(kerr),
			"duration", time.Since(start).String(),
			"error", err.Error(),
		)
		return "", kerr
	}
	observability.Current().ObserveLLMRequest(c.model, "200", time.Since(start))

	if len(resp.Choices) == 0 {
		return "", workout.NewError(workout.KindUpstreamError, op, "response has no choices", nil)
	}
	content := resp.Choices[0].Message.Content

	out, err := Sanitize(content)
	c.log.Debug("Stage response received",
		"messages", len(messages),
		"raw_len", len(content),
		"clean_len", len(out),
		"preview", preview(content),
		"duration", time.Since(start).String(),
	)
	if err != nil {
		return "", err
	}
	return out, nil
}

// classify maps transport and API failures onto error kinds. A 404, an
// unreachable host and a timeout all mean the service is unavailable.
func classify(op string, err error) error {
	if status := httpStatus(err); status != 0 {
		if status == http.StatusNotFound {
			return workout.NewError(workout.KindUpstreamUnavailable, op, fmt.Sprintf("status %d", status), err)
		}
		return workout.NewError(workout.KindUpstreamError, op, fmt.Sprintf("status %d: %s", status, err.Error()), err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return workout.NewError(workout.KindUpstreamUnavailable, op, "request timed out", err)
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return workout.NewError(workout.KindUpstreamUnavailable, op, "service unreachable", err)
	}
	return workout.NewError(workout.KindUpstreamError, op, err.Error(), err)
}

func httpStatus(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func statusLabel(err error) string {
	if status := httpStatus(err); status != 0 {
		return fmt.Sprintf("%d", status)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}
