package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaushiktak19/blog-website/internal/config"
	"github.com/kaushiktak19/blog-website/internal/landing"
	"github.com/kaushiktak19/blog-website/internal/models"
)

var now = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu         sync.Mutex
	technology []models.Post
	community  []models.Post
	tags       []models.Tag
	err        error
	gate       chan struct{}

	postCalls atomic.Int32
	pageCalls atomic.Int32
	lastPage  [2]int
}

func (f *fakeSource) Posts(ctx context.Context, category string) ([]models.Post, error) {
	f.postCalls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if category == "community" {
		return f.community, nil
	}
	return f.technology, nil
}

func (f *fakeSource) PostsPage(ctx context.Context, category string, page, size int) (models.PostPage, error) {
	f.pageCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPage = [2]int{page, size}
	if f.err != nil {
		return models.PostPage{}, f.err
	}
	return models.PostPage{Posts: f.community, Page: page, PageSize: size, Total: len(f.community)}, nil
}

func (f *fakeSource) Tags(ctx context.Context) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type fakeStore struct {
	posts    []models.Post
	tags     []models.Tag
	replaced int
	err      error
}

func (f *fakeStore) ReplaceSnapshot(ctx context.Context, posts []models.Post, tags []models.Tag) error {
	if f.err != nil {
		return f.err
	}
	f.replaced++
	f.posts = posts
	f.tags = tags
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.err }

func (f *fakeStore) ListPosts(ctx context.Context) ([]models.Post, error) { return f.posts, f.err }
func (f *fakeStore) ListTags(ctx context.Context) ([]models.Tag, error)   { return f.tags, f.err }

func (f *fakeStore) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, f.err
}

func post(slug string, daysAgo int, author string, categories ...string) models.Post {
	cats := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		cats = append(cats, models.Category{Name: c})
	}
	return models.Post{
		Slug:       slug,
		Title:      "Post " + slug,
		Date:       now.AddDate(0, 0, -daysAgo),
		AuthorName: author,
		CoverImage: "https://img/" + slug,
		Content:    "<p>hello world</p>",
		Categories: cats,
	}
}

func newSource() *fakeSource {
	return &fakeSource{
		technology: []models.Post{post("t1", 1, "Neha Gupta"), post("t2", 10, "Amaan Bhati"), post("shared", 3, "Neha Gupta")},
		community:  []models.Post{post("c1", 2, "Ana", "community"), post("shared", 3, "Neha Gupta", "community"), post("c1", 2, "Ana", "community")},
		tags:       []models.Tag{{Name: "Go"}, {Name: "Testing"}, {Name: " "}},
	}
}

func testSite() config.Site {
	return config.Site{
		DefaultAvatar:    "/avatar.png",
		PrioritizedTags:  []string{"testing"},
		PreferredAuthors: []string{"amaan"},
		Testimonials: []models.Testimonial{
			{Name: "A", Avatar: "image"},
			{Name: "B", Avatar: "https://b.png"},
			{Name: "C"},
		},
	}
}

func newService(src ContentSource, store SnapshotStore) *Service {
	return New(src, store, testSite(), Options{Now: func() time.Time { return now }})
}

func TestService_NoSnapshot(t *testing.T) {
	svc := newService(newSource(), nil)

	_, err := svc.Browse(landing.NewView())
	assert.ErrorIs(t, err, ErrNoSnapshot)
	_, err = svc.Latest()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestService_Refresh(t *testing.T) {
	src := newSource()
	store := &fakeStore{}
	svc := newService(src, store)
	updated := svc.Updated()

	require.NoError(t, svc.Refresh(context.Background()))

	select {
	case <-updated:
	default:
		t.Fatal("refresh did not notify watchers")
	}

	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, SourceCMS, snap.Source)
	assert.Len(t, snap.Posts, 4)
	assert.Len(t, snap.Community, 2)
	assert.Equal(t, now, snap.RefreshedAt)

	res, err := svc.Browse(landing.NewView())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, "t1", res.Posts[0].Slug)

	latest, err := svc.Latest()
	require.NoError(t, err)
	assert.Len(t, latest, 6)
	assert.Equal(t, "t1", latest[0].Slug)

	tags, err := svc.Tags()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Testing", tags[0].Name)

	authors, err := svc.Authors()
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "Amaan Bhati", authors[0].Name)

	covers, err := svc.Covers()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/t1", "https://img/t2", "https://img/shared"}, covers.Technology)
	assert.Equal(t, []string{"https://img/c1", "https://img/shared", "https://img/c1"}, covers.Community)

	options, err := svc.AuthorOptions()
	require.NoError(t, err)
	assert.Equal(t, []string{"all", "Neha Gupta", "Amaan Bhati", "Ana"}, options)

	assert.Equal(t, 1, store.replaced)
	assert.Len(t, store.posts, 4)
}

func TestService_RefreshFailureKeepsSnapshot(t *testing.T) {
	src := newSource()
	svc := newService(src, nil)
	require.NoError(t, svc.Refresh(context.Background()))

	src.fail(errors.New("cms down"))
	err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cms down")

	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Posts, 4)
}

func TestService_FallsBackToStore(t *testing.T) {
	store := &fakeStore{}
	require.NoError(t, newService(newSource(), store).Refresh(context.Background()))

	src := newSource()
	src.fail(errors.New("cms down"))
	svc := newService(src, store)

	err := svc.Refresh(context.Background())
	require.Error(t, err)

	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, SourceStore, snap.Source)
	assert.Len(t, snap.Posts, 4)
	assert.Equal(t, models.CollectionCommunity, snap.bySlug["c1"].Collection)
}

func TestService_FallbackWithEmptyStore(t *testing.T) {
	src := newSource()
	src.fail(errors.New("cms down"))
	svc := newService(src, &fakeStore{})

	err := svc.Refresh(context.Background())
	require.ErrorIs(t, err, ErrNoSnapshot)
	_, err = svc.Snapshot()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestService_ConcurrentRefreshSharesFetch(t *testing.T) {
	src := newSource()
	src.gate = make(chan struct{})
	svc := newService(src, nil)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Refresh(context.Background()))
		}()
	}
	require.Eventually(t, func() bool { return src.postCalls.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.EqualValues(t, 2, src.postCalls.Load())
}

func TestService_RefreshOutlivesCancelledCaller(t *testing.T) {
	src := newSource()
	src.gate = make(chan struct{})
	svc := newService(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- svc.Refresh(ctx) }()
	require.Eventually(t, func() bool { return src.postCalls.Load() == 2 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- svc.Refresh(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(src.gate)
	require.NoError(t, <-second)
	assert.EqualValues(t, 2, src.postCalls.Load())

	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Posts, 4)
}

func TestService_PingStore(t *testing.T) {
	assert.NoError(t, newService(newSource(), nil).PingStore(context.Background()))

	store := &fakeStore{}
	svc := newService(newSource(), store)
	assert.NoError(t, svc.PingStore(context.Background()))

	store.err = errors.New("db down")
	assert.ErrorContains(t, svc.PingStore(context.Background()), "db down")
}

func TestService_Post(t *testing.T) {
	store := &fakeStore{}
	svc := newService(newSource(), store)
	require.NoError(t, svc.Refresh(context.Background()))
	store.posts = []models.Post{{Slug: "archived", Title: "Old", Collection: models.CollectionCommunity}}

	p, err := svc.Post(context.Background(), "t2")
	require.NoError(t, err)
	assert.Equal(t, "Post t2", p.Title)

	_, err = svc.Post(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	p, err = svc.Post(context.Background(), "archived")
	require.NoError(t, err)
	assert.Equal(t, models.CollectionCommunity, p.Collection)
	assert.Equal(t, landing.AnonymousAuthor, p.AuthorName)
}

func TestService_CommunityPage(t *testing.T) {
	src := newSource()
	svc := newService(src, nil)

	page, err := svc.CommunityPage(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, MaxCommunityPageSize}, src.lastPage)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, models.CollectionCommunity, page.Posts[0].Collection)

	_, err = svc.CommunityPage(context.Background(), 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 1, src.pageCalls.Load())

	_, err = svc.CommunityPage(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, DefaultCommunityPageSize}, src.lastPage)
	assert.EqualValues(t, 2, src.pageCalls.Load())
}

func TestService_CommunityPageError(t *testing.T) {
	src := newSource()
	src.fail(errors.New("timeout"))
	svc := newService(src, nil)

	_, err := svc.CommunityPage(context.Background(), 1, 18)
	assert.ErrorContains(t, err, "timeout")
}

func TestService_Testimonials(t *testing.T) {
	svc := newService(newSource(), nil)

	top, bottom := svc.Testimonials()
	require.Len(t, top, 2)
	require.Len(t, bottom, 1)
	assert.Equal(t, "/avatar.png", top[0].Avatar)
	assert.Equal(t, "https://b.png", top[1].Avatar)
	assert.Equal(t, "/avatar.png", bottom[0].Avatar)
}

func TestService_SetSite(t *testing.T) {
	svc := newService(newSource(), nil)
	require.NoError(t, svc.Refresh(context.Background()))
	updated := svc.Updated()

	site := testSite()
	site.PrioritizedTags = []string{"go"}
	site.PreferredAuthors = nil
	svc.SetSite(site)

	select {
	case <-updated:
	default:
		t.Fatal("site change did not notify watchers")
	}

	tags, err := svc.Tags()
	require.NoError(t, err)
	assert.Equal(t, "Go", tags[0].Name)

	authors, err := svc.Authors()
	require.NoError(t, err)
	assert.Len(t, authors, 3)
}

func TestService_RunStopsWithContext(t *testing.T) {
	src := newSource()
	svc := New(src, nil, testSite(), Options{RefreshInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, err := svc.Snapshot()
		return err == nil
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
