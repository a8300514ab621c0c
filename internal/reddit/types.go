package reddit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fullname type prefixes. Reddit identifies every entity by a type-prefixed
// ID: t1_ for comments, t3_ for posts (links).
const (
	KindComment = "t1"
	KindPost    = "t3"
)

// PostFullname returns the t3_ fullname for a bare post ID; an already
// prefixed ID passes through unchanged.
func PostFullname(id string) string {
	return ensurePrefix(id, KindPost)
}

// CommentFullname returns the t1_ fullname for a bare comment ID; an already
// prefixed ID passes through unchanged.
func CommentFullname(id string) string {
	return ensurePrefix(id, KindComment)
}

func ensurePrefix(id, kind string) string {
	if strings.Contains(id, "_") {
		return id
	}
	return kind + "_" + id
}

// thing is Reddit's universal envelope: every entity arrives as
// {"kind": "...", "data": {...}}.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// listing is the payload of a kind=Listing thing.
type listing struct {
	After    string  `json:"after"`
	Children []thing `json:"children"`
}

// Post is the subset of a link's fields surfaced to tools.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	SelfText    string  `json:"selftext,omitempty"`
	URL         string  `json:"url,omitempty"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	IsSelf      bool    `json:"is_self"`
	Over18      bool    `json:"over_18"`
}

// Comment is the subset of a comment's fields surfaced to tools. Replies are
// flattened one level; deeper nesting is reachable through another
// get_post_comments call.
type Comment struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Body       string    `json:"body"`
	Score      int       `json:"score"`
	CreatedUTC float64   `json:"created_utc"`
	Replies    []Comment `json:"replies,omitempty"`
}

// User is the subset of an account's fields surfaced to tools.
type User struct {
	Name         string  `json:"name"`
	LinkKarma    int     `json:"link_karma"`
	CommentKarma int     `json:"comment_karma"`
	CreatedUTC   float64 `json:"created_utc"`
	IsGold       bool    `json:"is_gold"`
	IsMod        bool    `json:"is_mod"`
}

// APIError is a non-2xx response from Reddit, preserving the upstream
// status and whatever error detail the body carried.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("reddit api: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("reddit api: status %d: %s", e.StatusCode, e.Detail)
}

// decodePostListing converts a Listing thing into posts.
func decodePostListing(raw []byte) ([]Post, error) {
	var t thing
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	var l listing
	if err := json.Unmarshal(t.Data, &l); err != nil {
		return nil, fmt.Errorf("decode listing data: %w", err)
	}
	posts := make([]Post, 0, len(l.Children))
	for _, child := range l.Children {
		if child.Kind != KindPost {
			continue
		}
		var p Post
		if err := json.Unmarshal(child.Data, &p); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// decodeCommentListing converts a Listing thing into comments, following
// each comment's nested reply listing.
func decodeCommentListing(raw []byte) ([]Comment, error) {
	var t thing
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return decodeCommentChildren(t.Data)
}

func decodeCommentChildren(data json.RawMessage) ([]Comment, error) {
	var l listing
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode listing data: %w", err)
	}
	var comments []Comment
	for _, child := range l.Children {
		if child.Kind != KindComment {
			// "more" stubs and any other kinds are skipped.
			continue
		}
		var c struct {
			Comment
			// Replies is a nested Listing thing, or the empty string when
			// the comment is a leaf.
			Replies json.RawMessage `json:"replies"`
		}
		if err := json.Unmarshal(child.Data, &c); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		out := c.Comment
		if len(c.Replies) > 0 && c.Replies[0] == '{' {
			var rt thing
			if err := json.Unmarshal(c.Replies, &rt); err == nil && len(rt.Data) > 0 {
				nested, err := decodeCommentChildren(rt.Data)
				if err == nil {
					out.Replies = nested
				}
			}
		}
		comments = append(comments, out)
	}
	return comments, nil
}
