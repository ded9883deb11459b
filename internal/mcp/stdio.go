package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// StdioTransport serves JSON-RPC over line-delimited JSON on a reader/writer
// pair, stdin and stdout by default.
type StdioTransport struct {
	in      io.Reader
	out     io.Writer
	handler *Handler
}

// NewStdioTransport creates a transport bound to stdin and stdout.
func NewStdioTransport(handler *Handler) *StdioTransport {
	return &StdioTransport{in: os.Stdin, out: os.Stdout, handler: handler}
}

// NewTransport creates a transport over explicit streams. Used by tests.
func NewTransport(in io.Reader, out io.Writer, handler *Handler) *StdioTransport {
	return &StdioTransport{in: in, out: out, handler: handler}
}

// Serve reads requests until EOF or context cancellation. Malformed lines get
// a parse-error response and the loop continues.
func (t *StdioTransport) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(t.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			t.send(errorResponse(nil, codeParseError, "parse error", nil))
			continue
		}
		t.send(t.handler.Handle(ctx, &req))
	}
	return scanner.Err()
}

func (t *StdioTransport) send(resp *JSONRPCResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		payload = []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"marshal response"}}`)
	}
	fmt.Fprintln(t.out, string(payload))
}
