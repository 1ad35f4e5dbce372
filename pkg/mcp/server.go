// Package mcp serves answercache tools over the Model Context Protocol,
// speaking line-delimited JSON-RPC 2.0 on stdio.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	cachepkg "github.com/pario-ai/answercache/pkg/cache"
	"github.com/pario-ai/answercache/pkg/models"
)

// Source answers queries and reports analytics. It is satisfied by
// *client.Client for a remote server and by ServiceSource in-process.
type Source interface {
	Answer(ctx context.Context, query string) (models.QueryResult, error)
	Analytics(ctx context.Context) (models.AnalyticsReport, error)
}

// ServiceSource adapts an in-process cache service to Source.
type ServiceSource struct {
	Service *cachepkg.Service
}

// Answer resolves query through the wrapped service.
func (s ServiceSource) Answer(ctx context.Context, query string) (models.QueryResult, error) {
	return s.Service.Answer(ctx, query)
}

// Analytics reports the wrapped service's current analytics. It never fails.
func (s ServiceSource) Analytics(context.Context) (models.AnalyticsReport, error) {
	return s.Service.Analytics(), nil
}

// Server is a minimal stdio MCP server.
type Server struct {
	source  Source
	version string
	log     *zap.Logger
}

// New creates a Server backed by source. logger may be nil.
func New(source Source, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{source: source, version: version, log: logger}
}

// Run reads requests from r one per line and writes responses to w.
// It returns when r is exhausted or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(w, rpcError(nil, CodeParseError, "parse error"))
			continue
		}

		if resp := s.dispatch(ctx, &req); resp != nil {
			s.write(w, resp)
		}
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return result(req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      ServerInfo{Name: serverName, Version: s.version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		})
	case "notifications/initialized":
		return nil
	case "tools/list":
		return result(req.ID, ToolsListResult{Tools: allTools})
	case "tools/call":
		return s.callTool(ctx, req)
	default:
		if len(req.ID) == 0 {
			return nil
		}
		return rpcError(req.ID, CodeMethodNotFound, fmt.Sprintf("unknown method: %s", req.Method))
	}
}

func (s *Server) callTool(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return rpcError(req.ID, CodeInvalidParams, "invalid params")
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return result(req.ID, errorResult(fmt.Sprintf("unknown tool: %s", params.Name)))
	}
	s.log.Debug("tool call", zap.String("tool", params.Name))
	return result(req.ID, handler(ctx, s, params.Arguments))
}

func (s *Server) write(w io.Writer, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("mcp marshal", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		s.log.Error("mcp write", zap.Error(err))
	}
}
