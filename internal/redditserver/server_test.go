package redditserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/sorenkell/mcp-adapters/internal/reddit"
)

// fakeReddit serves the token endpoint and a couple of API routes.
func fakeReddit(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/r/golang/hot.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind":"Listing","data":{"children":[
			{"kind":"t3","data":{"id":"abc","title":"Go 1.26 released","author":"ann","subreddit":"golang","score":500,"num_comments":120}}
		]}}`))
	})
	mux.HandleFunc("/user/ann/about.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind":"t2","data":{"name":"ann","link_karma":10,"comment_karma":20}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSession(t *testing.T) *client.Client {
	t.Helper()
	backend := fakeReddit(t)
	rc := reddit.NewClient(reddit.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		UserAgent:    "test/1.0",
	}, zerolog.Nop(), reddit.WithBaseURLs(backend.URL, backend.URL))

	s := New(rc)
	c, err := client.NewInProcessClient(s)
	if err != nil {
		t.Fatalf("NewInProcessClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "1.0.0"}
	if _, err := c.Initialize(context.Background(), initReq); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return c
}

func textContent(res *mcp.CallToolResult) string {
	if res == nil || len(res.Content) == 0 {
		return ""
	}
	if tc, ok := mcp.AsTextContent(res.Content[0]); ok {
		return tc.Text
	}
	return ""
}

func TestToolRegistration(t *testing.T) {
	c := newTestSession(t)

	toolsRes, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	got := make(map[string]bool)
	for _, tool := range toolsRes.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{
		"get_subreddit_posts", "get_post_comments", "search_reddit",
		"get_user_info", "get_user_posts", "get_user_comments",
		"create_post", "create_comment", "edit_content", "delete_content", "vote",
	} {
		if !got[name] {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestGetSubredditPostsTool(t *testing.T) {
	c := newTestSession(t)

	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "get_subreddit_posts",
			Arguments: map[string]any{"subreddit": "golang"},
		},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", textContent(res))
	}
	text := textContent(res)
	if !strings.Contains(text, "Go 1.26 released") {
		t.Errorf("result = %q, want post title", text)
	}
}

func TestGetUserInfoTool(t *testing.T) {
	c := newTestSession(t)

	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "get_user_info",
			Arguments: map[string]any{"username": "ann"},
		},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", textContent(res))
	}
	if !strings.Contains(textContent(res), `"comment_karma": 20`) {
		t.Errorf("result = %q, want comment_karma", textContent(res))
	}
}

func TestMissingArgumentIsToolError(t *testing.T) {
	c := newTestSession(t)

	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "get_subreddit_posts",
			Arguments: map[string]any{},
		},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Error("expected error result for missing subreddit argument")
	}
}

func TestWriteToolWithoutCredentials(t *testing.T) {
	c := newTestSession(t)

	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "create_post",
			Arguments: map[string]any{
				"subreddit": "golang", "title": "hi", "content": "body",
			},
		},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error result without write credentials")
	}
	if !strings.Contains(textContent(res), "write operations require") {
		t.Errorf("error = %q, want credentials message", textContent(res))
	}
}
