package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultAuthBase = "https://www.reddit.com"
	defaultAPIBase  = "https://oauth.reddit.com"

	// tokenExpiryMargin refreshes the token slightly before Reddit does.
	tokenExpiryMargin = 60 * time.Second

	// rateLimitWait is the fallback delay before the single 429 retry when
	// the response carries no Retry-After header.
	rateLimitWait = 2 * time.Second

	defaultListingLimit = 25
	maxListingLimit     = 100
)

// validSorts are the listing sort orders Reddit accepts.
var validSorts = map[string]bool{
	"hot": true, "new": true, "top": true, "rising": true, "controversial": true, "relevance": true,
}

// Client calls the Reddit REST API. It lazily obtains an OAuth token on the
// first request and refreshes it when expired. A 429 response is retried
// exactly once after the header-specified (or fixed fallback) delay; a
// second 429 propagates as an APIError.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger

	// authBase and apiBase are overridable for tests (httptest servers).
	authBase string
	apiBase  string
	sleep    func(time.Duration)

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURLs overrides the token endpoint host and the API host. Used by
// tests to point the client at a local server.
func WithBaseURLs(authBase, apiBase string) Option {
	return func(c *Client) {
		c.authBase = authBase
		c.apiBase = apiBase
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient returns a client for the given credentials.
func NewClient(cfg Config, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
		authBase:   defaultAuthBase,
		apiBase:    defaultAPIBase,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ensureToken obtains or refreshes the OAuth token. Password grant when
// username/password are configured, client-credentials grant otherwise.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	if c.cfg.CanWrite() {
		form.Set("grant_type", "password")
		form.Set("username", c.cfg.Username)
		form.Set("password", c.cfg.Password)
	} else {
		form.Set("grant_type", "client_credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authBase+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Detail: "token refresh failed"}
	}

	var tok struct {
		AccessToken string  `json:"access_token"`
		ExpiresIn   float64 `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("token decode: %w", err)
	}
	if tok.AccessToken == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Detail: "token response missing access_token"}
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpiryMargin)
	c.log.Debug().Msg("reddit token refreshed")
	return c.token, nil
}

// do performs an authenticated request and returns the response body.
// form non-nil means a POST with url-encoded body; otherwise a GET with
// query parameters.
func (c *Client) do(ctx context.Context, path string, query url.Values, form url.Values) ([]byte, error) {
	body, retryAfter, err := c.doOnce(ctx, path, query, form)
	if retryAfter <= 0 {
		return body, err
	}

	// One delayed retry on 429, no backoff, no budget.
	c.log.Warn().Str("path", path).Dur("wait", retryAfter).Msg("rate limited, retrying once")
	c.sleep(retryAfter)
	body, retryAfter, err = c.doOnce(ctx, path, query, form)
	if retryAfter > 0 {
		return nil, &APIError{StatusCode: http.StatusTooManyRequests, Detail: "rate limited after retry"}
	}
	return body, err
}

// doOnce performs a single request. A 429 is reported via a positive
// retryAfter rather than an error so the caller can decide to retry.
func (c *Client) doOnce(ctx context.Context, path string, query url.Values, form url.Values) (body []byte, retryAfter time.Duration, err error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, 0, err
	}

	u := c.apiBase + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var req *http.Request
	if form != nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("reddit request %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reddit response %s: %w", path, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := rateLimitWait
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, perr := strconv.Atoi(ra); perr == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			}
		}
		return nil, wait, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}
	return body, 0, nil
}

// errorDetail pulls Reddit's message field out of an error body, falling
// back to a trimmed raw body.
func errorDetail(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func clampLimit(limit int) string {
	if limit <= 0 {
		limit = defaultListingLimit
	}
	if limit > maxListingLimit {
		limit = maxListingLimit
	}
	return strconv.Itoa(limit)
}

// SubredditPosts fetches a subreddit listing: /r/{sub}/{sort}.json.
func (c *Client) SubredditPosts(ctx context.Context, subreddit, sort string, limit int) ([]Post, error) {
	if sort == "" {
		sort = "hot"
	}
	if !validSorts[sort] {
		return nil, fmt.Errorf("invalid sort %q (want hot, new, top, rising or controversial)", sort)
	}
	q := url.Values{"limit": {clampLimit(limit)}}
	body, err := c.do(ctx, fmt.Sprintf("/r/%s/%s.json", url.PathEscape(subreddit), sort), q, nil)
	if err != nil {
		return nil, err
	}
	return decodePostListing(body)
}

// PostWithComments is the result of PostComments: the post plus its comment
// tree, flattened per level.
type PostWithComments struct {
	Post     Post      `json:"post"`
	Comments []Comment `json:"comments"`
}

// PostComments fetches /r/{sub}/comments/{id}.json — Reddit returns a
// two-element array: a listing holding the post, then the comment listing.
func (c *Client) PostComments(ctx context.Context, subreddit, postID string, limit int) (*PostWithComments, error) {
	q := url.Values{"limit": {clampLimit(limit)}}
	body, err := c.do(ctx, fmt.Sprintf("/r/%s/comments/%s.json",
		url.PathEscape(subreddit), url.PathEscape(strings.TrimPrefix(postID, KindPost+"_"))), q, nil)
	if err != nil {
		return nil, err
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return nil, fmt.Errorf("decode comments response: %w", err)
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("decode comments response: expected post and comment listings, got %d elements", len(parts))
	}

	posts, err := decodePostListing(parts[0])
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("post %q not found", postID)
	}
	comments, err := decodeCommentListing(parts[1])
	if err != nil {
		return nil, err
	}
	return &PostWithComments{Post: posts[0], Comments: comments}, nil
}

// Search queries /search.json, or /r/{sub}/search.json restricted to a
// subreddit when one is given.
func (c *Client) Search(ctx context.Context, query, subreddit, sort string, limit int) ([]Post, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if sort != "" && !validSorts[sort] {
		return nil, fmt.Errorf("invalid sort %q", sort)
	}
	q := url.Values{
		"q":     {query},
		"limit": {clampLimit(limit)},
		"type":  {"link"},
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	path := "/search.json"
	if subreddit != "" {
		path = fmt.Sprintf("/r/%s/search.json", url.PathEscape(subreddit))
		q.Set("restrict_sr", "1")
	}
	body, err := c.do(ctx, path, q, nil)
	if err != nil {
		return nil, err
	}
	return decodePostListing(body)
}

// UserAbout fetches /user/{name}/about.json.
func (c *Client) UserAbout(ctx context.Context, username string) (*User, error) {
	body, err := c.do(ctx, fmt.Sprintf("/user/%s/about.json", url.PathEscape(username)), nil, nil)
	if err != nil {
		return nil, err
	}
	var t thing
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	var u User
	if err := json.Unmarshal(t.Data, &u); err != nil {
		return nil, fmt.Errorf("decode user data: %w", err)
	}
	return &u, nil
}

// UserPosts fetches /user/{name}/submitted.json.
func (c *Client) UserPosts(ctx context.Context, username string, limit int) ([]Post, error) {
	q := url.Values{"limit": {clampLimit(limit)}}
	body, err := c.do(ctx, fmt.Sprintf("/user/%s/submitted.json", url.PathEscape(username)), q, nil)
	if err != nil {
		return nil, err
	}
	return decodePostListing(body)
}

// UserComments fetches /user/{name}/comments.json.
func (c *Client) UserComments(ctx context.Context, username string, limit int) ([]Comment, error) {
	q := url.Values{"limit": {clampLimit(limit)}}
	body, err := c.do(ctx, fmt.Sprintf("/user/%s/comments.json", url.PathEscape(username)), q, nil)
	if err != nil {
		return nil, err
	}
	return decodeCommentListing(body)
}

// requireWrite guards the write endpoints behind full credentials.
func (c *Client) requireWrite() error {
	if !c.cfg.CanWrite() {
		return fmt.Errorf("write operations require %s and %s", EnvUsername, EnvPassword)
	}
	return nil
}

// jsonEnvelope is Reddit's api_type=json response wrapper.
type jsonEnvelope struct {
	JSON struct {
		Errors [][]any        `json:"errors"`
		Data   map[string]any `json:"data"`
	} `json:"json"`
}

func decodeEnvelope(body []byte) (map[string]any, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode api response: %w", err)
	}
	if len(env.JSON.Errors) > 0 {
		return nil, &APIError{StatusCode: http.StatusOK, Detail: fmt.Sprintf("%v", env.JSON.Errors)}
	}
	return env.JSON.Data, nil
}

// SubmitPost creates a post via /api/submit. kind is "self" or "link";
// content is the body text or the URL accordingly.
func (c *Client) SubmitPost(ctx context.Context, subreddit, title, kind, content string) (map[string]any, error) {
	if err := c.requireWrite(); err != nil {
		return nil, err
	}
	if kind != "self" && kind != "link" {
		return nil, fmt.Errorf("invalid kind %q (want self or link)", kind)
	}
	form := url.Values{
		"sr":       {subreddit},
		"title":    {title},
		"kind":     {kind},
		"api_type": {"json"},
	}
	if kind == "self" {
		form.Set("text", content)
	} else {
		form.Set("url", content)
	}
	body, err := c.do(ctx, "/api/submit", nil, form)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(body)
}

// Comment replies to a post or comment via /api/comment. parent is a
// fullname (t3_... or t1_...).
func (c *Client) Comment(ctx context.Context, parent, text string) (map[string]any, error) {
	if err := c.requireWrite(); err != nil {
		return nil, err
	}
	form := url.Values{
		"thing_id": {parent},
		"text":     {text},
		"api_type": {"json"},
	}
	body, err := c.do(ctx, "/api/comment", nil, form)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(body)
}

// EditText edits a self post or comment body via /api/editusertext.
func (c *Client) EditText(ctx context.Context, fullname, text string) (map[string]any, error) {
	if err := c.requireWrite(); err != nil {
		return nil, err
	}
	form := url.Values{
		"thing_id": {fullname},
		"text":     {text},
		"api_type": {"json"},
	}
	body, err := c.do(ctx, "/api/editusertext", nil, form)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(body)
}

// Delete removes the caller's own post or comment via /api/del.
func (c *Client) Delete(ctx context.Context, fullname string) error {
	if err := c.requireWrite(); err != nil {
		return err
	}
	_, err := c.do(ctx, "/api/del", nil, url.Values{"id": {fullname}})
	return err
}

// Vote casts a vote via /api/vote. dir is 1 (up), 0 (rescind), or -1 (down).
func (c *Client) Vote(ctx context.Context, fullname string, dir int) error {
	if err := c.requireWrite(); err != nil {
		return err
	}
	if dir < -1 || dir > 1 {
		return fmt.Errorf("invalid vote direction %d (want -1, 0 or 1)", dir)
	}
	_, err := c.do(ctx, "/api/vote", nil, url.Values{
		"id":  {fullname},
		"dir": {strconv.Itoa(dir)},
	})
	return err
}
