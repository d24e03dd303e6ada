package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/goframe/llms"

	"github.com/mkraev/diffsentry/internal/config"
	"github.com/mkraev/diffsentry/internal/core"
)

// Generator is the minimal surface of the model backend the review client
// needs. llms.Model satisfies it; tests substitute a fake.
type Generator interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

// Client submits rendered prompts to the model backend and turns responses
// into per-file results. Transient transport and rate-limit failures are
// retried with exponential backoff; a malformed response is a parse failure
// and is never retried. Calls share no mutable state, so a Client is safe
// for concurrent use.
type Client struct {
	model     Generator
	retries   int
	baseDelay time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// NewClient builds a review client around the given model backend.
func NewClient(model Generator, cfg config.LLMConfig, logger *slog.Logger) *Client {
	return &Client{
		model:     model,
		retries:   cfg.Retries,
		baseDelay: cfg.RetryBaseDelay,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

// Review sends one rendered prompt to the model and parses the structured
// response. It never returns an error: failures are captured in the result's
// failure marker so one file's error cannot abort the run.
func (c *Client) Review(ctx context.Context, req core.ReviewRequest) core.FileReviewResult {
	result := core.FileReviewResult{File: req.File}

	response, err := c.generate(ctx, req.Prompt)
	if err != nil {
		c.logger.Warn("model call failed for file", "file", req.File.Path, "error", err)
		result.Err = err
		return result
	}

	findings, err := ParseFindings(response, req.File.Path)
	if err != nil {
		c.logger.Warn("failed to parse model response", "file", req.File.Path, "error", err)
		result.Err = err
		return result
	}

	result.Findings = findings
	return result
}

// generate performs the model call with per-call timeout and bounded retries
// on transient failures.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			backoff := c.baseDelay << uint(attempt-1)
			c.logger.Debug("retrying model call", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", core.ErrTransport, ctx.Err())
			case <-time.After(backoff):
			}
		}

		response, err := c.callWithTimeout(ctx, prompt)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !core.IsRetryable(err) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", core.ErrTransport, ctx.Err())
		}
	}

	return "", fmt.Errorf("model call failed after %d retries: %w", c.retries, lastErr)
}

// callWithTimeout wraps model generation with a hard per-call timeout so a
// hung backend call cannot block sibling reviews.
func (c *Client) callWithTimeout(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		resp string
		err  error
	}
	resultCh := make(chan outcome, 1)

	go func() {
		resp, err := c.model.Call(callCtx, prompt)
		select {
		case resultCh <- outcome{resp, err}:
		case <-callCtx.Done():
			// Parent timed out or was cancelled; don't block the goroutine.
		}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return "", classifyBackendError(res.err)
		}
		return res.resp, nil
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: model call exceeded %s timeout", core.ErrTransport, c.timeout)
		}
		return "", fmt.Errorf("%w: %v", core.ErrTransport, callCtx.Err())
	}
}

// classifyBackendError maps opaque backend errors onto the core taxonomy.
// The model SDKs expose errors as strings, so classification is heuristic:
// rate-limit markers become ErrRateLimit, credential markers become ErrAuth,
// everything else is a retryable transport failure.
func classifyBackendError(err error) error {
	if core.IsRetryable(err) || core.IsFatal(err) || errors.Is(err, core.ErrParse) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", core.ErrTransport, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") || strings.Contains(msg, "quota"):
		return fmt.Errorf("%w: %v", core.ErrRateLimit, err)
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401") || strings.Contains(msg, "api key"):
		return fmt.Errorf("%w: %v", core.ErrAuth, err)
	default:
		return fmt.Errorf("%w: %v", core.ErrTransport, err)
	}
}
