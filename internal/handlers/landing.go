package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kaushiktak19/blog-website/internal/carousel"
	"github.com/kaushiktak19/blog-website/internal/landing"
	"github.com/kaushiktak19/blog-website/internal/logger"
	"github.com/kaushiktak19/blog-website/internal/models"
	"github.com/kaushiktak19/blog-website/internal/service"
)

// Content is the read side of the content service.
type Content interface {
	Refresh(ctx context.Context) error
	PingStore(ctx context.Context) error
	Snapshot() (*service.Snapshot, error)
	Updated() <-chan struct{}
	Browse(v *landing.View) (landing.Result, error)
	Latest() ([]models.Post, error)
	Tags() ([]models.Tag, error)
	Authors() ([]models.FeaturedAuthor, error)
	AuthorOptions() ([]string, error)
	Covers() (service.CollectionCovers, error)
	Post(ctx context.Context, slug string) (models.Post, error)
	CommunityPage(ctx context.Context, page, size int) (models.PostPage, error)
	CommunityAll() ([]models.Post, error)
	Testimonials() (top, bottom []models.Testimonial)
}

type LandingHandler struct {
	content      Content
	carouselOpts []carousel.Option
}

func NewLandingHandler(content Content, carouselOpts ...carousel.Option) *LandingHandler {
	return &LandingHandler{content: content, carouselOpts: carouselOpts}
}

type FilterEcho struct {
	Search     string `json:"search"`
	Author     string `json:"author"`
	Date       string `json:"date"`
	Collection string `json:"collection"`
	Sort       string `json:"sort"`
}

type BrowseResponse struct {
	Heading      string                `json:"heading"`
	View         landing.ViewMode      `json:"view"`
	Filters      FilterEcho            `json:"filters"`
	Active       bool                  `json:"filtersActive"`
	Count        int                   `json:"count"`
	Page         int                   `json:"page"`
	TotalPages   int                   `json:"totalPages"`
	PageSize     int                   `json:"pageSize"`
	Posts        []models.PostListItem `json:"posts"`
	Pagination   landing.Controls      `json:"pagination"`
	Empty        bool                  `json:"empty"`
	EmptyMessage string                `json:"emptyMessage,omitempty"`
}

// viewFromQuery builds the browse state from query parameters. Filters are
// applied before the page since any filter change resets it.
func viewFromQuery(r *http.Request) *landing.View {
	q := r.URL.Query()
	v := landing.NewView()
	v.SetMode(landing.ParseViewMode(q.Get("view")))
	v.SetSearch(q.Get("search"))
	v.SetAuthor(landing.ParseAuthor(q.Get("author")))
	v.SetDate(landing.ParseDateWindow(q.Get("date")))
	v.SetCollection(landing.ParseCollection(q.Get("collection")))
	v.SetSort(landing.ParseSort(q.Get("sort")))
	v.SetPage(parsePositiveInt(q.Get("page"), 1))
	if start := parsePositiveInt(q.Get("window"), 0); start > 0 {
		v.ShiftWindow(start)
	}
	return v
}

func (h *LandingHandler) Posts(w http.ResponseWriter, r *http.Request) {
	view := viewFromQuery(r)
	res, err := h.content.Browse(view)
	if err != nil {
		respondContentError(w, r, err, "failed to load posts")
		return
	}

	f := view.Filter()
	resp := BrowseResponse{
		Heading: res.Heading,
		View:    res.Mode,
		Filters: FilterEcho{
			Search:     f.Search,
			Author:     f.Author.String(),
			Date:       f.Date.String(),
			Collection: f.Collection.String(),
			Sort:       f.Sort.String(),
		},
		Active:     f.Active(),
		Count:      res.Count,
		Page:       res.Page,
		TotalPages: res.TotalPages,
		PageSize:   landing.PageSize,
		Posts:      models.ListItems(res.Posts),
		Pagination: res.Window.Controls(),
		Empty:      res.Empty,
	}
	if res.Empty {
		resp.EmptyMessage = landing.EmptyMessage
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *LandingHandler) PostAuthors(w http.ResponseWriter, r *http.Request) {
	options, err := h.content.AuthorOptions()
	if err != nil {
		respondContentError(w, r, err, "failed to load authors")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"authors": options})
}

func (h *LandingHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		slug = r.URL.Query().Get("slug")
	}
	if slug == "" {
		respondError(w, http.StatusBadRequest, "missing slug")
		return
	}
	post, err := h.content.Post(r.Context(), slug)
	if err != nil {
		respondContentError(w, r, err, "failed to load post")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

type FeaturedResponse struct {
	Posts              []models.PostListItem `json:"posts"`
	IntervalMs         int64                 `json:"intervalMs"`
	TickTransitionMs   int64                 `json:"tickTransitionMs"`
	SelectTransitionMs int64                 `json:"selectTransitionMs"`
}

func (h *LandingHandler) Featured(w http.ResponseWriter, r *http.Request) {
	latest, err := h.content.Latest()
	if err != nil {
		respondContentError(w, r, err, "failed to load featured posts")
		return
	}
	respondJSON(w, http.StatusOK, FeaturedResponse{
		Posts:              models.ListItems(latest),
		IntervalMs:         carousel.Interval.Milliseconds(),
		TickTransitionMs:   carousel.TickTransition.Milliseconds(),
		SelectTransitionMs: carousel.SelectTransition.Milliseconds(),
	})
}

func (h *LandingHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.content.Tags()
	if err != nil {
		respondContentError(w, r, err, "failed to load tags")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

func (h *LandingHandler) Authors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.content.Authors()
	if err != nil {
		respondContentError(w, r, err, "failed to load authors")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"authors": authors})
}

func (h *LandingHandler) Collections(w http.ResponseWriter, r *http.Request) {
	covers, err := h.content.Covers()
	if err != nil {
		respondContentError(w, r, err, "failed to load collections")
		return
	}
	respondJSON(w, http.StatusOK, covers)
}

func (h *LandingHandler) Testimonials(w http.ResponseWriter, r *http.Request) {
	top, bottom := h.content.Testimonials()
	respondJSON(w, http.StatusOK, map[string]any{
		"top":    nonNil(top),
		"bottom": nonNil(bottom),
	})
}

type CommunityAllResponse struct {
	Posts []models.PostListItem `json:"posts"`
	Total int                   `json:"total"`
}

type CommunityPageResponse struct {
	Posts       []models.PostListItem `json:"posts"`
	Page        int                   `json:"page"`
	PageSize    int                   `json:"pageSize"`
	Total       int                   `json:"total"`
	HasNextPage bool                  `json:"hasNextPage"`
}

func (h *LandingHandler) CommunityPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("mode") == "all" {
		posts, err := h.content.CommunityAll()
		if err != nil {
			respondContentError(w, r, err, "Failed to load community posts")
			return
		}
		respondJSON(w, http.StatusOK, CommunityAllResponse{Posts: models.ListItems(posts), Total: len(posts)})
		return
	}

	page := parsePositiveInt(q.Get("page"), 1)
	size := min(parsePositiveInt(q.Get("first"), service.DefaultCommunityPageSize), service.MaxCommunityPageSize)
	result, err := h.content.CommunityPage(r.Context(), page, size)
	if err != nil {
		respondContentError(w, r, err, "Failed to load community posts")
		return
	}
	respondJSON(w, http.StatusOK, CommunityPageResponse{
		Posts:       models.ListItems(result.Posts),
		Page:        result.Page,
		PageSize:    result.PageSize,
		Total:       result.Total,
		HasNextPage: result.HasNextPage,
	})
}

// Revalidate refreshes the snapshot now. It waits for the refresh so the
// caller knows whether fresh content is being served.
func (h *LandingHandler) Revalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.content.Refresh(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "revalidate failed", "error", err)
		respondError(w, http.StatusBadGateway, "revalidation failed")
		return
	}
	snap, err := h.content.Snapshot()
	if err != nil {
		respondContentError(w, r, err, "revalidation failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"revalidated": true,
		"posts":       len(snap.Posts),
		"refreshedAt": snap.RefreshedAt,
	})
}

// Health reports liveness, the age of the snapshot once loaded and whether
// the snapshot store answers. A failing store marks the service degraded.
func (h *LandingHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if snap, err := h.content.Snapshot(); err == nil {
		resp["source"] = snap.Source
		resp["refreshedAt"] = snap.RefreshedAt
		resp["posts"] = len(snap.Posts)
	} else {
		resp["status"] = "loading"
	}
	if err := h.content.PingStore(r.Context()); err != nil {
		logger.Warn("snapshot store ping failed", "error", err)
		resp["store"] = "unavailable"
		if resp["status"] == "ok" {
			resp["status"] = "degraded"
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
