package reddit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"cyfox/internal/log"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Post is one cached feed entry.
type Post struct {
	Title     string
	Subreddit string
	Author    string
	URL       string
	SelfText  string
	Score     int64
	FetchedAt time.Time
}

// Fetcher retrieves posts for a set of subreddits. Rate limiting is the
// caller's cadence, not the fetcher's concern.
type Fetcher interface {
	Fetch(ctx context.Context, subreddits []string) ([]Post, error)
}

// HTTPFetcher is the shipped Fetcher, reading each subreddit's hot listing.
type HTTPFetcher struct {
	client      *http.Client
	baseURL     string
	userAgent   string
	postsPerSub int
	logger      zerolog.Logger
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(timeout time.Duration, userAgent string, postsPerSub int) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if postsPerSub <= 0 {
		postsPerSub = 5
	}
	return &HTTPFetcher{
		client:      &http.Client{Timeout: timeout},
		baseURL:     "https://www.reddit.com",
		userAgent:   userAgent,
		postsPerSub: postsPerSub,
		logger:      log.WithComponent("reddit-fetch"),
	}
}

// Fetch pulls the hot listing of every subreddit. Per-subreddit failures
// are logged and skipped; Fetch only errors when no subreddit yields posts.
func (fetcher *HTTPFetcher) Fetch(ctx context.Context, subreddits []string) ([]Post, error) {
	var posts []Post
	var lastErr error
	for _, subreddit := range subreddits {
		fetched, err := fetcher.fetchSubreddit(ctx, subreddit)
		if err != nil {
			lastErr = err
			fetcher.logger.Warn().Err(err).Str("subreddit", subreddit).Msg("subreddit fetch failed")
			continue
		}
		posts = append(posts, fetched...)
	}
	if len(posts) == 0 && lastErr != nil {
		return nil, lastErr
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Score > posts[j].Score })
	return posts, nil
}

func (fetcher *HTTPFetcher) fetchSubreddit(ctx context.Context, subreddit string) ([]Post, error) {
	url := fmt.Sprintf("%s/r/%s/hot.json", fetcher.baseURL, subreddit)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("User-Agent", fetcher.userAgent)

	response, err := fetcher.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", subreddit, err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch r/%s: unexpected status %d", subreddit, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read r/%s body: %w", subreddit, err)
	}
	return parseListing(subreddit, body, fetcher.postsPerSub), nil
}

// parseListing extracts posts from a reddit listing document.
func parseListing(subreddit string, body []byte, limit int) []Post {
	now := time.Now()
	var posts []Post
	children := gjson.GetBytes(body, "data.children")
	children.ForEach(func(_, child gjson.Result) bool {
		data := child.Get("data")
		posts = append(posts, Post{
			Title:     data.Get("title").String(),
			Subreddit: subreddit,
			Author:    data.Get("author").String(),
			URL:       data.Get("url").String(),
			SelfText:  data.Get("selftext").String(),
			Score:     data.Get("score").Int(),
			FetchedAt: now,
		})
		return len(posts) < limit
	})
	return posts
}
