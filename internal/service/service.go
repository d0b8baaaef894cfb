// Package service keeps the current content snapshot of the landing page
// and answers every read from it. The snapshot is rebuilt from the CMS on
// a timer and on demand, persisted when a store is configured, and read
// back from the store when the CMS is unreachable at startup.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kaushiktak19/blog-website/internal/config"
	"github.com/kaushiktak19/blog-website/internal/landing"
	"github.com/kaushiktak19/blog-website/internal/logger"
	"github.com/kaushiktak19/blog-website/internal/metrics"
	"github.com/kaushiktak19/blog-website/internal/models"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrNoSnapshot = errors.New("content not loaded yet")
)

const (
	SourceCMS   = "cms"
	SourceStore = "store"

	DefaultCommunityPageSize = 18
	MaxCommunityPageSize     = 50

	communityCacheSize = 128
)

type ContentSource interface {
	Posts(ctx context.Context, category string) ([]models.Post, error)
	PostsPage(ctx context.Context, category string, page, size int) (models.PostPage, error)
	Tags(ctx context.Context) ([]models.Tag, error)
}

type SnapshotStore interface {
	ReplaceSnapshot(ctx context.Context, posts []models.Post, tags []models.Tag) error
	ListPosts(ctx context.Context) ([]models.Post, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	Ping(ctx context.Context) error
}

type Options struct {
	TechnologyCategory string
	CommunityCategory  string
	RefreshInterval    time.Duration
	CommunityCacheTTL  time.Duration
	Now                func() time.Time
}

func (o *Options) defaults() {
	if o.TechnologyCategory == "" {
		o.TechnologyCategory = "technology"
	}
	if o.CommunityCategory == "" {
		o.CommunityCategory = "community"
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = 30 * time.Second
	}
	if o.CommunityCacheTTL <= 0 {
		o.CommunityCacheTTL = 30 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

type Service struct {
	source ContentSource
	store  SnapshotStore
	opts   Options

	group singleflight.Group
	pages *expirable.LRU[string, models.PostPage]

	mu      sync.RWMutex
	site    config.Site
	dir     *landing.Directory
	snap    *Snapshot
	updated chan struct{}
}

// New builds a service. store may be nil, in which case snapshots live in
// memory only.
func New(source ContentSource, store SnapshotStore, site config.Site, opts Options) *Service {
	opts.defaults()
	return &Service{
		source:  source,
		store:   store,
		opts:    opts,
		pages:   expirable.NewLRU[string, models.PostPage](communityCacheSize, nil, opts.CommunityCacheTTL),
		site:    site,
		dir:     landing.NewDirectory(site.Authors),
		updated: make(chan struct{}),
	}
}

// Refresh rebuilds the snapshot from the CMS. Concurrent calls share one
// fetch. When the CMS fails and nothing has been loaded yet, the last
// persisted snapshot is used instead and the CMS error is still returned.
// The shared fetch does not stop when the caller that started it goes away.
func (s *Service) Refresh(ctx context.Context) error {
	ch := s.group.DoChan("refresh", func() (any, error) {
		return nil, s.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) refresh(ctx context.Context) error {
	var (
		technology, community []models.Post
		tags                  []models.Tag
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		technology, err = s.source.Posts(gctx, s.opts.TechnologyCategory)
		return err
	})
	g.Go(func() error {
		var err error
		community, err = s.source.Posts(gctx, s.opts.CommunityCategory)
		return err
	})
	g.Go(func() error {
		var err error
		tags, err = s.source.Tags(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		metrics.RecordRefreshFailure(SourceCMS)
		err = fmt.Errorf("fetch content: %w", err)
		if s.current() == nil && s.store != nil {
			if loadErr := s.loadFromStore(ctx); loadErr != nil {
				return errors.Join(err, loadErr)
			}
			logger.Warn("serving persisted snapshot", "error", err)
		}
		return err
	}

	snap := s.publish(technology, community, tags, SourceCMS)
	if s.store != nil {
		if err := s.store.ReplaceSnapshot(ctx, snap.Posts, tags); err != nil {
			logger.Error("persist snapshot failed", "error", err)
		}
	}
	logger.Info("content refreshed",
		"posts", len(snap.Posts),
		"community", len(snap.Community),
		"tags", len(tags),
	)
	return nil
}

func (s *Service) loadFromStore(ctx context.Context) error {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		metrics.RecordRefreshFailure(SourceStore)
		return fmt.Errorf("load persisted posts: %w", err)
	}
	if len(posts) == 0 {
		metrics.RecordRefreshFailure(SourceStore)
		return ErrNoSnapshot
	}
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		metrics.RecordRefreshFailure(SourceStore)
		return fmt.Errorf("load persisted tags: %w", err)
	}
	technology, community := landing.SplitByCollection(posts)
	s.publish(technology, community, tags, SourceStore)
	return nil
}

func (s *Service) publish(technology, community []models.Post, tags []models.Tag, source string) *Snapshot {
	s.mu.Lock()
	snap := buildSnapshot(technology, community, tags, s.site, s.dir, source, s.opts.Now())
	s.snap = snap
	ch := s.swapUpdatedLocked()
	s.mu.Unlock()

	close(ch)
	s.pages.Purge()
	metrics.RecordSnapshot(source, snap.counts[models.CollectionTechnology], snap.counts[models.CollectionCommunity], snap.RefreshedAt)
	return snap
}

// SetSite swaps the editorial configuration and rebuilds the lists that
// depend on it.
func (s *Service) SetSite(site config.Site) {
	s.mu.Lock()
	s.site = site
	s.dir = landing.NewDirectory(site.Authors)
	if s.snap != nil {
		s.snap = s.snap.withSite(site, s.dir)
	}
	ch := s.swapUpdatedLocked()
	s.mu.Unlock()
	close(ch)
}

func (s *Service) swapUpdatedLocked() chan struct{} {
	ch := s.updated
	s.updated = make(chan struct{})
	return ch
}

// Updated returns a channel that is closed on the next snapshot change.
// Callers fetch a fresh channel after each notification.
func (s *Service) Updated() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// PingStore checks the snapshot store. It is a no-op without one.
func (s *Service) PingStore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Ping(ctx)
}

// Run refreshes on the configured interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("scheduled refresh failed", "error", err)
			}
		}
	}
}

func (s *Service) current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Service) snapshot() (*Snapshot, error) {
	if snap := s.current(); snap != nil {
		return snap, nil
	}
	return nil, ErrNoSnapshot
}

// Snapshot returns the current snapshot.
func (s *Service) Snapshot() (*Snapshot, error) {
	return s.snapshot()
}

// Browse evaluates the view against the current snapshot at the current
// time.
func (s *Service) Browse(v *landing.View) (landing.Result, error) {
	snap, err := s.snapshot()
	if err != nil {
		return landing.Result{}, err
	}
	res := landing.Browse(snap.Posts, v, s.opts.Now())
	metrics.BrowseResults.Observe(float64(res.Count))
	return res, nil
}

func (s *Service) Latest() ([]models.Post, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Latest, nil
}

func (s *Service) Tags() ([]models.Tag, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.CuratedTags, nil
}

func (s *Service) Authors() ([]models.FeaturedAuthor, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Authors, nil
}

func (s *Service) AuthorOptions() ([]string, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return landing.AuthorOptions(snap.Posts), nil
}

func (s *Service) Covers() (CollectionCovers, error) {
	snap, err := s.snapshot()
	if err != nil {
		return CollectionCovers{}, err
	}
	return snap.Covers, nil
}

// Post looks the slug up in the snapshot, then in the store.
func (s *Service) Post(ctx context.Context, slug string) (models.Post, error) {
	if snap := s.current(); snap != nil {
		if p, ok := snap.bySlug[slug]; ok {
			return p, nil
		}
	}
	if s.store == nil {
		return models.Post{}, ErrNotFound
	}
	p, err := s.store.GetPostBySlug(ctx, slug)
	if err != nil {
		return models.Post{}, err
	}
	if p == nil {
		return models.Post{}, ErrNotFound
	}
	posts := landing.Normalize(landing.SplitByCollection([]models.Post{*p}))
	return posts[0], nil
}

// CommunityPage returns one page of community posts straight from the CMS,
// cached briefly per page and size.
func (s *Service) CommunityPage(ctx context.Context, page, size int) (models.PostPage, error) {
	page = max(page, 1)
	if size <= 0 {
		size = DefaultCommunityPageSize
	}
	size = min(size, MaxCommunityPageSize)

	key := strconv.Itoa(page) + ":" + strconv.Itoa(size)
	if cached, ok := s.pages.Get(key); ok {
		return cached, nil
	}

	result, err := s.source.PostsPage(ctx, s.opts.CommunityCategory, page, size)
	if err != nil {
		return models.PostPage{}, fmt.Errorf("community page %d: %w", page, err)
	}
	result.Posts = landing.Normalize(nil, result.Posts)
	s.pages.Add(key, result)
	return result, nil
}

// CommunityAll returns every community post without duplicates.
func (s *Service) CommunityAll() ([]models.Post, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Community, nil
}

// Testimonials returns the configured testimonials split into two rows,
// with placeholder avatars resolved.
func (s *Service) Testimonials() (top, bottom []models.Testimonial) {
	s.mu.RLock()
	site := s.site
	s.mu.RUnlock()

	resolved := make([]models.Testimonial, 0, len(site.Testimonials))
	for _, t := range site.Testimonials {
		t.Avatar = landing.ResolveAvatar(t.Avatar, site.DefaultAvatar)
		resolved = append(resolved, t)
	}
	return landing.SplitRows(resolved)
}
