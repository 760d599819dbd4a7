// Package rpc implements the JSON-RPC 2.0 method dispatcher, the operation
// registry, and the declared parameter schemas exposed via tools/list.
package rpc

import "encoding/json"

// JSON-RPC 2.0 error codes used by the dispatcher.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Version is the JSON-RPC protocol version tag.
const Version = "2.0"

// ProtocolVersion is the capability-negotiation protocol revision.
const ProtocolVersion = "2024-11-05"

// Request is an inbound JSON-RPC 2.0 envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outbound JSON-RPC 2.0 envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CallParams carries the tools/call payload.
type CallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// TextContent is one entry of a tool result.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult is the tools/call result payload.
type CallResult struct {
	Content []TextContent `json:"content"`
}

// ToolInfo describes one registered operation in tools/list output.
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ServerInfo identifies the server during capability negotiation.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult is the initialize result payload.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

// ParseErrorResponse wraps a body-decoding failure as a JSON-RPC parse
// error. The request ID is unknown at that point.
func ParseErrorResponse(err error) *Response {
	return errorResponse(nil, CodeParseError, "Parse error: "+err.Error())
}

func errorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{JSONRPC: Version, ID: id, Error: &Error{Code: code, Message: message}}
}

func resultResponse(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

func textResult(id json.RawMessage, text string) *Response {
	return resultResponse(id, CallResult{Content: []TextContent{{Type: "text", Text: text}}})
}
