// Package llm defines the transformation-service contract the pipeline stages call,
// together with the prompts, report schemas and output sanitizing they share.
package llm

import (
	"context"
	"errors"
	"time"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one role-tagged block of a request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a single transformation call.
type Request struct {
	Model      string
	Stage      string // for logs only
	Messages   []Message
	Structured bool // ask for a JSON object instead of free text
}

type Response struct {
	Content string
	Model   string
	Elapsed time.Duration
}

// Transformer is the interface our pipeline depends on.
type Transformer interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}

// TransformerFunc adapts a plain function to Transformer.
type TransformerFunc func(ctx context.Context, req Request) (Response, error)

func (f TransformerFunc) Invoke(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

var (
	// ErrTransport covers connection failures and timeouts.
	ErrTransport = errors.New("transformation service unreachable")
	// ErrRejected covers non-2xx answers, error payloads and empty choice lists.
	ErrRejected = errors.New("transformation service rejected the request")
	// ErrMalformedOutput is returned when structured output is not valid JSON.
	ErrMalformedOutput = errors.New("transformation service returned malformed output")
)
