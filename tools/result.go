package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
)

// ToolError is the failure half of a Result. Kind is one of the sentinel
// errors (ErrInvalidArguments, ErrUpstreamFailure, ErrInternal).
type ToolError struct {
	Kind    error
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

func (e *ToolError) Unwrap() error {
	return e.Kind
}

// Result is the outcome of one tool invocation: either Text on success or
// Err on failure, never both.
type Result struct {
	Text string
	Err  *ToolError
}

func success(text string) Result {
	return Result{Text: text}
}

func failure(kind error, format string, args ...any) Result {
	return Result{Err: &ToolError{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

func invalidArguments(format string, args ...any) Result {
	return failure(errors.ErrInvalidArguments, format, args...)
}

func upstreamFailure(format string, args ...any) Result {
	return failure(errors.ErrUpstreamFailure, format, args...)
}

// IsError reports whether the invocation failed.
func (r Result) IsError() bool {
	return r.Err != nil
}

// Content is the single text block sent back to the client.
func (r Result) Content() string {
	if r.Err != nil {
		return "Error: " + r.Err.Message
	}
	return r.Text
}

// CallToolResult converts the result to the MCP envelope. Failures are
// flagged with isError rather than surfaced as protocol errors.
func (r Result) CallToolResult() *mcp.CallToolResult {
	if r.Err != nil {
		return mcp.NewToolResultError(r.Content())
	}
	return mcp.NewToolResultText(r.Text)
}
