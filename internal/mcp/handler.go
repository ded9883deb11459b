package mcp

import (
	"context"
	"sort"
)

// Tool is one callable MCP operation.
type Tool interface {
	// Execute runs the tool with the request's arguments.
	Execute(ctx context.Context, args map[string]any) (any, error)
	// Schema describes the tool's input for tools/list.
	Schema() map[string]any
}

// Handler routes JSON-RPC requests to registered tools.
type Handler struct {
	serverName    string
	serverVersion string
	tools         map[string]Tool
}

// NewHandler creates an empty handler.
func NewHandler(serverName, serverVersion string) *Handler {
	return &Handler{
		serverName:    serverName,
		serverVersion: serverVersion,
		tools:         make(map[string]Tool),
	}
}

// RegisterTool adds a tool under the given name.
func (h *Handler) RegisterTool(name string, tool Tool) {
	h.tools[name] = tool
}

// Handle processes one request and always returns a response.
func (h *Handler) Handle(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req)
	case "tools/list":
		return h.handleToolsList(req)
	case "tools/call":
		return h.handleToolCall(ctx, req)
	default:
		return errorResponse(req.ID, codeMethodNotFound, "method not found: "+req.Method, nil)
	}
}

func (h *Handler) handleInitialize(req *JSONRPCRequest) *JSONRPCResponse {
	return successResponse(req.ID, map[string]any{
		"protocolVersion": "1.0",
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]string{
			"name":    h.serverName,
			"version": h.serverVersion,
		},
	})
}

func (h *Handler) handleToolsList(req *JSONRPCRequest) *JSONRPCResponse {
	names := make([]string, 0, len(h.tools))
	for name := range h.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	toolsList := make([]map[string]any, 0, len(names))
	for _, name := range names {
		toolsList = append(toolsList, map[string]any{
			"name":        name,
			"inputSchema": h.tools[name].Schema(),
		})
	}
	return successResponse(req.ID, map[string]any{"tools": toolsList})
}

func (h *Handler) handleToolCall(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	toolName, ok := req.Params["name"].(string)
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, "invalid params: 'name' is required", nil)
	}
	tool, exists := h.tools[toolName]
	if !exists {
		return errorResponse(req.ID, codeInvalidParams, "tool not found: "+toolName, nil)
	}

	args, ok := req.Params["arguments"].(map[string]any)
	if !ok {
		args = make(map[string]any)
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return errorResponse(req.ID, codeInternalError, "tool execution error: "+err.Error(), nil)
	}
	return successResponse(req.ID, result)
}
