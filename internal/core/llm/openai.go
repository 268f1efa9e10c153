package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/lueurxax/trend-pulse/internal/platform/config"
	"github.com/lueurxax/trend-pulse/internal/platform/observability"
)

type openaiClient struct {
	cfg         *config.Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

// ErrCircuitBreakerOpen indicates the circuit breaker is open.
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

func NewOpenAI(cfg *config.Config, logger *zerolog.Logger) Client {
	return &openaiClient{
		cfg:         cfg,
		client:      openai.NewClient(cfg.LLMAPIKey),
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.LLMRequestsPerMin)/secondsPerMinute), rateLimiterBurst),
	}
}

func (c *openaiClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", ErrCircuitBreakerOpen, c.circuitOpenUntil)
	}

	return nil
}

func (c *openaiClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures = 0
}

func (c *openaiClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures++
	if c.consecutiveFailures >= circuitBreakerThreshold {
		c.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

func (c *openaiClient) resolveModel() string {
	if c.cfg.LLMModel != "" {
		return c.cfg.LLMModel
	}

	return openai.GPT4oMini
}

func (c *openaiClient) GenerateTrendSummary(ctx context.Context, req SummaryRequest) (string, error) {
	if len(req.Items) == 0 {
		return "", nil
	}

	if err := c.checkCircuit(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	model := c.resolveModel()
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildSummaryPrompt(req),
			},
		},
	})

	observability.SummaryDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

	if err != nil {
		c.recordFailure()
		observability.SummaryRequests.WithLabelValues(model, statusError).Inc()

		return "", fmt.Errorf(errOpenAIChatCompletion, err)
	}

	c.recordSuccess()
	observability.SummaryRequests.WithLabelValues(model, statusOK).Inc()

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *openaiClient) StreamTrendSummary(ctx context.Context, req SummaryRequest, emit func(chunk string) error) error {
	if len(req.Items) == 0 {
		return nil
	}

	if err := c.checkCircuit(); err != nil {
		return err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf(errRateLimiter, err)
	}

	model := c.resolveModel()
	start := time.Now()

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildSummaryPrompt(req),
			},
		},
		Stream: true,
	})
	if err != nil {
		c.recordFailure()
		observability.SummaryRequests.WithLabelValues(model, statusError).Inc()

		return fmt.Errorf(errOpenAIChatStream, err)
	}

	defer func() {
		_ = stream.Close()
	}()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			c.recordFailure()
			observability.SummaryRequests.WithLabelValues(model, statusError).Inc()

			return fmt.Errorf(errOpenAIChatStream, err)
		}

		if len(resp.Choices) == 0 {
			continue
		}

		if delta := resp.Choices[0].Delta.Content; delta != "" {
			if err := emit(delta); err != nil {
				return err
			}
		}
	}

	c.recordSuccess()
	observability.SummaryDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	observability.SummaryRequests.WithLabelValues(model, statusOK).Inc()

	return nil
}
