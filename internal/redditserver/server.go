// Package redditserver builds the Reddit MCP server and registers tools.
package redditserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sorenkell/mcp-adapters/internal/reddit"
)

const (
	ServerName    = "reddit-mcp"
	ServerVersion = "1.0.0"
)

// New returns an MCP server with all Reddit tools registered against client.
func New(client *reddit.Client) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	registerReadTools(s, client)
	registerWriteTools(s, client)
	return s
}

// resultJSON marshals v into a text content block.
func resultJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func registerReadTools(s *server.MCPServer, client *reddit.Client) {
	s.AddTool(mcp.NewTool("get_subreddit_posts",
		mcp.WithDescription("Fetch posts from a subreddit. Sort is one of hot, new, top, rising, controversial."),
		mcp.WithString("subreddit", mcp.Required(), mcp.Description("Subreddit name without the r/ prefix")),
		mcp.WithString("sort", mcp.Description("Listing sort order (default hot)")),
		mcp.WithNumber("limit", mcp.Description("Maximum posts to return (default 25, max 100)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sub, err := req.RequireString("subreddit")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		posts, err := client.SubredditPosts(ctx, sub, req.GetString("sort", ""), req.GetInt("limit", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultJSON(posts)
	})

	s.AddTool(mcp.NewTool("get_post_comments",
		mcp.WithDescription("Fetch a post and its comment tree."),
		mcp.WithString("subreddit", mcp.Required(), mcp.Description("Subreddit the post lives in")),
		mcp.WithString("post_id", mcp.Required(), mcp.Description("Post ID, with or without the t3_ prefix")),
		mcp.WithNumber("limit", mcp.Description("Maximum comments to return (default 25, max 100)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sub, err := req.RequireString("subreddit")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		postID, err := req.RequireString("post_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := client.PostComments(ctx, sub, postID, req.GetInt("limit", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultJSON(res)
	})

	s.AddTool(mcp.NewTool("search_reddit",
		mcp.WithDescription("Search Reddit posts, optionally restricted to one subreddit."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithString("subreddit", mcp.Description("Restrict the search to this subreddit")),
		mcp.WithString("sort", mcp.Description("Result order: relevance, hot, new, top (default relevance)")),
		mcp.WithNumber("limit", mcp.Description("Maximum posts to return (default 25, max 100)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		posts, err := client.Search(ctx, query, req.GetString("subreddit", ""), req.GetString("sort", ""), req.GetInt("limit", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultJSON(posts)
	})

	s.AddTool(mcp.NewTool("get_user_info",
		mcp.WithDescription("Fetch a Reddit user's profile (karma, age, flags)."),
		mcp.WithString("username", mcp.Required(), mcp.Description("Username without the u/ prefix")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("username")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		user, err := client.UserAbout(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultJSON(user)
	})

	s.AddTool(mcp.NewTool("get_user_posts",
		mcp.WithDescription("Fetch a user's submitted posts."),
		mcp.WithString("username", mcp.Required(), mcp.Description("Username without the u/ prefix")),
		mcp.WithNumber("limit", mcp.Description("Maximum posts to return (default 25, max 100)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("username")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		posts, err := client.UserPosts(ctx, name, req.GetInt("limit", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultJSON(posts)
	})

	s.AddTool(mcp.NewTool("get_user_comments",
		mcp.WithDescription("Fetch a user's comments."),
		mcp.WithString("username", mcp.Required(), mcp.Description("Username without the u/ prefix")),
		mcp.WithNumber("limit", mcp.Description("Maximum comments to return (default 25, max 100)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("username")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		comments, err := client.UserComments(ctx, name, req.GetInt("limit", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultJSON(comments)
	})
}

func registerWriteTools(s *server.MCPServer, client *reddit.Client) {
	s.AddTool(mcp.NewTool("create_post",
		mcp.WithDescription("Submit a new post. Requires REDDIT_USERNAME/REDDIT_PASSWORD credentials."),
		mcp.WithString("subreddit", mcp.Required(), mcp.Description("Subreddit to post to, without the r/ prefix")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Post title")),
		mcp.WithString("kind", mcp.Description("Post kind: self (text) or link (default self)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Body text for self posts, URL for link posts")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sub, err := req.RequireString("subreddit")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		title, err := req.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := client.SubmitPost(ctx, sub, title, req.GetString("kind", "self"), content)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultJSON(data)
	})

	s.AddTool(mcp.NewTool("create_comment",
		mcp.WithDescription("Reply to a post or comment."),
		mcp.WithString("parent_id", mcp.Required(), mcp.Description("Fullname of the parent: t3_<id> for a post, t1_<id> for a comment")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Comment body (markdown)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		parent, err := req.RequireString("parent_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := client.Comment(ctx, parent, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultJSON(data)
	})

	s.AddTool(mcp.NewTool("edit_content",
		mcp.WithDescription("Edit the body of your own post or comment."),
		mcp.WithString("fullname", mcp.Required(), mcp.Description("Fullname of the thing to edit (t3_<id> or t1_<id>)")),
		mcp.WithString("text", mcp.Required(), mcp.Description("New body text")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fullname, err := req.RequireString("fullname")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := client.EditText(ctx, fullname, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultJSON(data)
	})

	s.AddTool(mcp.NewTool("delete_content",
		mcp.WithDescription("Delete your own post or comment."),
		mcp.WithString("fullname", mcp.Required(), mcp.Description("Fullname of the thing to delete (t3_<id> or t1_<id>)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fullname, err := req.RequireString("fullname")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := client.Delete(ctx, fullname); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("deleted %s", fullname)), nil
	})

	s.AddTool(mcp.NewTool("vote",
		mcp.WithDescription("Vote on a post or comment: 1 up, -1 down, 0 to rescind."),
		mcp.WithString("fullname", mcp.Required(), mcp.Description("Fullname of the thing to vote on (t3_<id> or t1_<id>)")),
		mcp.WithNumber("direction", mcp.Required(), mcp.Description("1, -1 or 0")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fullname, err := req.RequireString("fullname")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dir, err := req.RequireInt("direction")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := client.Vote(ctx, fullname, dir); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("voted %d on %s", dir, fullname)), nil
	})
}
