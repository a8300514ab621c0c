package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, cfg Config, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(cfg, zerolog.Nop())
	c.authBase = srv.URL
	c.apiBase = srv.URL
	c.sleep = func(time.Duration) {}
	return c
}

func scriptConfig() Config {
	return Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Username:     "alice",
		Password:     "hunter2",
		UserAgent:    "test-agent/1.0",
	}
}

func appOnlyConfig() Config {
	return Config{ClientID: "id", ClientSecret: "secret", UserAgent: "test-agent/1.0"}
}

func tokenHandler(t *testing.T, wantGrant string, calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, wantGrant, r.PostForm.Get("grant_type"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","expires_in":3600}`))
	}
}

func TestTokenGrantSelection(t *testing.T) {
	t.Run("password grant with full credentials", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "password", nil))
		mux.HandleFunc("/r/golang/hot.json", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
			w.Write([]byte(`{"kind":"Listing","data":{"children":[]}}`))
		})
		c := testClient(t, scriptConfig(), mux)
		_, err := c.SubredditPosts(context.Background(), "golang", "hot", 10)
		require.NoError(t, err)
	})

	t.Run("client credentials without username", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "client_credentials", nil))
		mux.HandleFunc("/r/golang/hot.json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"kind":"Listing","data":{"children":[]}}`))
		})
		c := testClient(t, appOnlyConfig(), mux)
		_, err := c.SubredditPosts(context.Background(), "golang", "hot", 10)
		require.NoError(t, err)
	})
}

func TestTokenCachedAcrossRequests(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "password", &tokenCalls))
	mux.HandleFunc("/r/golang/hot.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind":"Listing","data":{"children":[]}}`))
	})
	c := testClient(t, scriptConfig(), mux)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.SubredditPosts(ctx, "golang", "hot", 10)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), tokenCalls.Load(), "token should be fetched once and cached")
}

func TestRateLimitRetriesOnce(t *testing.T) {
	var apiCalls atomic.Int32
	var slept time.Duration
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "password", nil))
	mux.HandleFunc("/r/golang/new.json", func(w http.ResponseWriter, r *http.Request) {
		if apiCalls.Add(1) == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"kind":"Listing","data":{"children":[]}}`))
	})
	c := testClient(t, scriptConfig(), mux)
	c.sleep = func(d time.Duration) { slept = d }

	_, err := c.SubredditPosts(context.Background(), "golang", "new", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(2), apiCalls.Load())
	assert.Equal(t, 3*time.Second, slept, "should honor Retry-After")
}

func TestRateLimitPersistentFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "password", nil))
	var apiCalls atomic.Int32
	mux.HandleFunc("/r/golang/new.json", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c := testClient(t, scriptConfig(), mux)

	_, err := c.SubredditPosts(context.Background(), "golang", "new", 5)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, int32(2), apiCalls.Load(), "exactly one retry, no budget")
}

func TestUpstreamErrorPreservesDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "password", nil))
	mux.HandleFunc("/r/private/hot.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Forbidden","error":403}`))
	})
	c := testClient(t, scriptConfig(), mux)

	_, err := c.SubredditPosts(context.Background(), "private", "hot", 5)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "Forbidden")
}

func TestSubredditPostsDecoding(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "password", nil))
	mux.HandleFunc("/r/golang/hot.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"kind":"Listing","data":{"children":[
			{"kind":"t3","data":{"id":"abc","title":"First","author":"ann","subreddit":"golang","score":42,"num_comments":7,"is_self":true}},
			{"kind":"t3","data":{"id":"def","title":"Second","author":"bob","subreddit":"golang","score":1,"num_comments":0,"url":"https://example.com"}}
		]}}`))
	})
	c := testClient(t, scriptConfig(), mux)

	posts, err := c.SubredditPosts(context.Background(), "golang", "hot", 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "First", posts[0].Title)
	assert.Equal(t, 42, posts[0].Score)
	assert.True(t, posts[0].IsSelf)
	assert.Equal(t, "https://example.com", posts[1].URL)
}

func TestSubredditPostsRejectsBadSort(t *testing.T) {
	c := NewClient(scriptConfig(), zerolog.Nop())
	_, err := c.SubredditPosts(context.Background(), "golang", "bogus", 5)
	require.ErrorContains(t, err, "invalid sort")
}

func TestPostComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "password", nil))
	mux.HandleFunc("/r/golang/comments/abc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"abc","title":"Post","author":"ann"}}]}},
			{"kind":"Listing","data":{"children":[
				{"kind":"t1","data":{"id":"c1","author":"bob","body":"top level","score":3,
					"replies":{"kind":"Listing","data":{"children":[{"kind":"t1","data":{"id":"c2","author":"cyd","body":"nested","score":1,"replies":""}}]}}}},
				{"kind":"more","data":{"count":12}}
			]}}
		]`))
	})
	c := testClient(t, scriptConfig(), mux)

	// fullname prefix is stripped from the path
	res, err := c.PostComments(context.Background(), "golang", "t3_abc", 0)
	require.NoError(t, err)
	assert.Equal(t, "Post", res.Post.Title)
	require.Len(t, res.Comments, 1, "more stubs are skipped")
	assert.Equal(t, "top level", res.Comments[0].Body)
	require.Len(t, res.Comments[0].Replies, 1)
	assert.Equal(t, "nested", res.Comments[0].Replies[0].Body)
}

func TestSearchRestrictedToSubreddit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "password", nil))
	mux.HandleFunc("/r/golang/search.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "generics", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("restrict_sr"))
		w.Write([]byte(`{"kind":"Listing","data":{"children":[]}}`))
	})
	c := testClient(t, scriptConfig(), mux)

	_, err := c.Search(context.Background(), "generics", "golang", "", 5)
	require.NoError(t, err)
}

func TestUserAbout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "password", nil))
	mux.HandleFunc("/user/ann/about.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind":"t2","data":{"name":"ann","link_karma":100,"comment_karma":250,"is_gold":true}}`))
	})
	c := testClient(t, scriptConfig(), mux)

	u, err := c.UserAbout(context.Background(), "ann")
	require.NoError(t, err)
	assert.Equal(t, "ann", u.Name)
	assert.Equal(t, 250, u.CommentKarma)
	assert.True(t, u.IsGold)
}

func TestSubmitPost(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "password", nil))
	mux.HandleFunc("/api/submit", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "golang", r.PostForm.Get("sr"))
		assert.Equal(t, "self", r.PostForm.Get("kind"))
		assert.Equal(t, "hello", r.PostForm.Get("text"))
		assert.Equal(t, "json", r.PostForm.Get("api_type"))
		w.Write([]byte(`{"json":{"errors":[],"data":{"id":"xyz","name":"t3_xyz","url":"https://reddit.com/r/golang/xyz"}}}`))
	})
	c := testClient(t, scriptConfig(), mux)

	data, err := c.SubmitPost(context.Background(), "golang", "A title", "self", "hello")
	require.NoError(t, err)
	assert.Equal(t, "t3_xyz", data["name"])
}

func TestSubmitPostAPIErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler(t, "password", nil))
	mux.HandleFunc("/api/submit", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"json":{"errors":[["SUBREDDIT_NOTALLOWED","not allowed to post there","sr"]]}}`))
	})
	c := testClient(t, scriptConfig(), mux)

	_, err := c.SubmitPost(context.Background(), "golang", "A title", "self", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUBREDDIT_NOTALLOWED")
}

func TestWriteRequiresCredentials(t *testing.T) {
	c := NewClient(appOnlyConfig(), zerolog.Nop())
	ctx := context.Background()

	_, err := c.SubmitPost(ctx, "golang", "t", "self", "x")
	assert.ErrorContains(t, err, "write operations require")
	_, err = c.Comment(ctx, "t3_abc", "x")
	assert.ErrorContains(t, err, "write operations require")
	assert.ErrorContains(t, c.Delete(ctx, "t3_abc"), "write operations require")
	assert.ErrorContains(t, c.Vote(ctx, "t3_abc", 1), "write operations require")
}

func TestVoteValidatesDirection(t *testing.T) {
	c := NewClient(scriptConfig(), zerolog.Nop())
	assert.ErrorContains(t, c.Vote(context.Background(), "t3_abc", 2), "invalid vote direction")
}

func TestFullnameHelpers(t *testing.T) {
	assert.Equal(t, "t3_abc", PostFullname("abc"))
	assert.Equal(t, "t3_abc", PostFullname("t3_abc"))
	assert.Equal(t, "t1_def", CommentFullname("def"))
	assert.Equal(t, "t1_def", CommentFullname("t1_def"))
}
