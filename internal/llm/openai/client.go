package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/llm"
)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []llm.Message   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Invoke implements llm.Transformer using chat/completions.
func (c *Client) Invoke(ctx context.Context, req llm.Request) (llm.Response, error) {
	start := time.Now()
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.cfg.Model
	}
	taskID := common.TaskIDFromContext(ctx)

	body := chatRequest{Model: model, Messages: req.Messages}
	if c.cfg.Temperature > 0 {
		t := c.cfg.Temperature
		body.Temperature = &t
	}
	if req.Structured {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	c.logger.Info("llm.invoke.start",
		"task_id", taskID,
		"stage", req.Stage,
		"model", model,
		"messages", len(req.Messages),
		"structured", req.Structured,
	)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		if errors.Is(err, llm.ErrRejected) {
			err = fmt.Errorf("%w: %s", err, apiErrorMessage(raw))
		}
		c.logger.Error("llm.invoke.http_error",
			"task_id", taskID, "stage", req.Stage, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Response{}, err
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.invoke.decode_error",
			"task_id", taskID, "stage", req.Stage, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Response{}, fmt.Errorf("%w: decode openai response: %v", llm.ErrRejected, err)
	}
	if cc.Error != nil {
		return llm.Response{}, fmt.Errorf("%w: %s", llm.ErrRejected, cc.Error.Message)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.invoke.no_choices",
			"task_id", taskID, "stage", req.Stage,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Response{}, fmt.Errorf("%w: no choices in openai response", llm.ErrRejected)
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if req.Structured {
		if c.cfg.Lenient {
			content = llm.StripCodeFences(content)
		}
		if !json.Valid([]byte(content)) {
			c.logger.Error("llm.invoke.invalid_json",
				"task_id", taskID, "stage", req.Stage,
				"finish_reason", cc.Choices[0].FinishReason,
				"content_len", len(content),
			)
			return llm.Response{}, fmt.Errorf("%w: response is not valid JSON (finish_reason=%s)",
				llm.ErrMalformedOutput, cc.Choices[0].FinishReason)
		}
	}

	if cc.Model != "" {
		model = cc.Model
	}
	elapsed := time.Since(start)
	c.logger.Info("llm.invoke.ok",
		"task_id", taskID,
		"stage", req.Stage,
		"model", model,
		"content_len", len(content),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return llm.Response{Content: content, Model: model, Elapsed: elapsed}, nil
}

func apiErrorMessage(raw []byte) string {
	var e chatResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 512 {
		s = s[:512] + "..."
	}
	return s
}
