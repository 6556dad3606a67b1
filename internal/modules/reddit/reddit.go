// Package reddit implements the feed worker: it refreshes a small cache of
// posts on its own cadence and serves them to the renderer one at a time.
package reddit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cyfox/internal/core/model"
	"cyfox/internal/core/state"
	"cyfox/internal/log"

	"github.com/rs/zerolog"
)

// Module is the feed worker.
type Module struct {
	config  model.RedditConfig
	store   *state.Store
	fetcher Fetcher
	logger  zerolog.Logger

	mu    sync.Mutex
	posts []Post
	index int
}

// New creates the feed worker around a Fetcher.
func New(config model.RedditConfig, store *state.Store, fetcher Fetcher) *Module {
	return &Module{
		config:  config,
		store:   store,
		fetcher: fetcher,
		logger:  log.WithComponent("reddit"),
	}
}

// Name implements worker.Module.
func (module *Module) Name() string { return "reddit" }

// Interval implements worker.Module.
func (module *Module) Interval() time.Duration { return module.config.Interval }

// Tick refreshes the post cache while the companion is in reddit mode. The
// fetch happens entirely before any commit, so the serialized section never
// waits on the network.
func (module *Module) Tick(ctx context.Context) error {
	if _, mode := module.store.Current(); mode != state.ModeReddit {
		return nil
	}

	posts, err := module.fetcher.Fetch(ctx, module.config.Subreddits)
	if err != nil {
		return fmt.Errorf("refresh feed: %w", err)
	}
	if len(posts) > module.config.MaxPosts && module.config.MaxPosts > 0 {
		posts = posts[:module.config.MaxPosts]
	}

	module.mu.Lock()
	module.posts = posts
	module.index = 0
	module.mu.Unlock()
	module.logger.Info().Int("posts", len(posts)).Msg("feed refreshed")
	return nil
}

// Current returns the post currently on screen, or nil.
func (module *Module) Current() *Post {
	module.mu.Lock()
	defer module.mu.Unlock()
	if len(module.posts) == 0 {
		return nil
	}
	post := module.posts[module.index]
	return &post
}

// Next advances to the next cached post, wrapping around.
func (module *Module) Next() *Post {
	module.mu.Lock()
	defer module.mu.Unlock()
	if len(module.posts) == 0 {
		return nil
	}
	module.index = (module.index + 1) % len(module.posts)
	post := module.posts[module.index]
	return &post
}

// Count returns the number of cached posts.
func (module *Module) Count() int {
	module.mu.Lock()
	defer module.mu.Unlock()
	return len(module.posts)
}
