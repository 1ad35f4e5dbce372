package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pario-ai/answercache/pkg/answer"
	cachepkg "github.com/pario-ai/answercache/pkg/cache"
	"github.com/pario-ai/answercache/pkg/models"
)

// fakeSource implements Source for testing.
type fakeSource struct {
	report  models.AnalyticsReport
	err     error
	queries []string
}

func (f *fakeSource) Answer(_ context.Context, query string) (models.QueryResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return models.QueryResult{}, f.err
	}
	return models.QueryResult{Answer: "answer to " + query, CacheKey: strings.ToLower(query), Latency: 2000}, nil
}

func (f *fakeSource) Analytics(context.Context) (models.AnalyticsReport, error) {
	return f.report, f.err
}

func sendAndReceive(t *testing.T, srv *Server, req Request) Response {
	t.Helper()
	line, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	line = append(line, '\n')

	var out bytes.Buffer
	if err := srv.Run(context.Background(), bytes.NewReader(line), &out); err != nil {
		t.Fatal(err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, out.String())
	}
	return resp
}

func callTool(t *testing.T, srv *Server, name, args string) ToolCallResult {
	t.Helper()
	p := ToolCallParams{Name: name}
	if args != "" {
		p.Arguments = json.RawMessage(args)
	}
	params, _ := json.Marshal(p)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`7`),
		Method:  "tools/call",
		Params:  params,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result ToolCallResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Content) == 0 {
		t.Fatal("expected content")
	}
	return result
}

func TestInitialize(t *testing.T) {
	srv := New(&fakeSource{}, "test", nil)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "initialize",
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if string(resp.ID) != "1" {
		t.Errorf("id = %s, want 1", resp.ID)
	}

	data, _ := json.Marshal(resp.Result)
	var result InitializeResult
	_ = json.Unmarshal(data, &result)

	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocol version = %s, want 2024-11-05", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "answercache" || result.ServerInfo.Version != "test" {
		t.Errorf("unexpected server info: %+v", result.ServerInfo)
	}
}

func TestToolsList(t *testing.T) {
	srv := New(&fakeSource{}, "test", nil)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`2`),
		Method:  "tools/list",
	})

	data, _ := json.Marshal(resp.Result)
	var result ToolsListResult
	_ = json.Unmarshal(data, &result)

	if len(result.Tools) != 2 {
		t.Fatalf("got %d tools, want 2", len(result.Tools))
	}
	for _, tool := range result.Tools {
		if _, ok := toolHandlers[tool.Name]; !ok {
			t.Errorf("listed tool %s has no handler", tool.Name)
		}
	}
}

func TestToolCallAnalytics(t *testing.T) {
	pct := 66.67
	src := &fakeSource{report: models.AnalyticsReport{
		HitRate:            0.67,
		MissRate:           0.33,
		TotalRequests:      3,
		CacheHits:          2,
		CacheMisses:        1,
		CacheSize:          1,
		CostSavings:        0.01,
		CostSavingsPercent: &pct,
		Strategies:         []string{"exact match", "LRU eviction", "TTL expiration"},
	}}
	srv := New(src, "test", nil)

	text := callTool(t, srv, "answercache_analytics", "").Content[0].Text
	for _, want := range []string{"0.67", "66.67%", "$0.01", "LRU eviction"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output, got: %s", want, text)
		}
	}
}

func TestToolCallQuery(t *testing.T) {
	src := &fakeSource{}
	srv := New(src, "test", nil)

	res := callTool(t, srv, "answercache_query", `{"query":"Hello"}`)
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", res.Content[0].Text)
	}
	if !strings.Contains(res.Content[0].Text, "answer to Hello") {
		t.Errorf("unexpected output: %s", res.Content[0].Text)
	}
	if len(src.queries) != 1 || src.queries[0] != "Hello" {
		t.Errorf("source saw %v", src.queries)
	}
}

func TestToolCallQueryValidation(t *testing.T) {
	srv := New(&fakeSource{}, "test", nil)

	for _, args := range []string{"", `{}`, `{"query":7}`} {
		if res := callTool(t, srv, "answercache_query", args); !res.IsError {
			t.Errorf("args %q: expected isError", args)
		}
	}
}

func TestToolCallSourceError(t *testing.T) {
	srv := New(&fakeSource{err: errors.New("unreachable")}, "test", nil)

	res := callTool(t, srv, "answercache_analytics", "")
	if !res.IsError || !strings.Contains(res.Content[0].Text, "unreachable") {
		t.Errorf("expected source error, got: %+v", res)
	}
}

func TestToolCallUnknownTool(t *testing.T) {
	srv := New(&fakeSource{}, "test", nil)
	if res := callTool(t, srv, "nope", ""); !res.IsError {
		t.Error("expected isError for unknown tool")
	}
}

func TestServiceSource(t *testing.T) {
	c := cachepkg.New(cachepkg.Options{MaxSize: 10, TTL: time.Hour, AvgTokensPerRequest: 500})
	svc := cachepkg.NewService(c, answer.Stub{}, cachepkg.ServiceOptions{HitLatency: 45, MissLatency: 2000})
	srv := New(ServiceSource{Service: svc}, "test", nil)

	callTool(t, srv, "answercache_query", `{"query":"Hello World"}`)
	res := callTool(t, srv, "answercache_query", `{"query":" hello world"}`)
	if !strings.Contains(res.Content[0].Text, "cache hit") {
		t.Errorf("expected a hit, got: %s", res.Content[0].Text)
	}

	text := callTool(t, srv, "answercache_analytics", "").Content[0].Text
	if !strings.Contains(text, "Requests:     2") {
		t.Errorf("unexpected analytics: %s", text)
	}
}

func TestNotificationNoResponse(t *testing.T) {
	srv := New(&fakeSource{}, "test", nil)

	line, _ := json.Marshal(Request{
		JSONRPC: "2.0",
		Method:  "notifications/initialized",
	})
	line = append(line, '\n')

	var out bytes.Buffer
	_ = srv.Run(context.Background(), bytes.NewReader(line), &out)

	if out.Len() != 0 {
		t.Errorf("expected no output for notification, got: %s", out.String())
	}
}

func TestParseError(t *testing.T) {
	srv := New(&fakeSource{}, "test", nil)

	var out bytes.Buffer
	_ = srv.Run(context.Background(), strings.NewReader("{not json\n"), &out)

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != CodeParseError {
		t.Errorf("expected parse error, got %+v", resp)
	}
}

func TestUnknownMethod(t *testing.T) {
	srv := New(&fakeSource{}, "test", nil)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`9`),
		Method:  "unknown/method",
	})

	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != CodeMethodNotFound {
		t.Errorf("error code = %d, want %d", resp.Error.Code, CodeMethodNotFound)
	}
}
