package landing

import (
	"fmt"
	"strings"
	"time"

	"github.com/kaushiktak19/blog-website/internal/models"
)

// ViewMode only selects a layout for the renderer.
type ViewMode string

const (
	ModeGrid     ViewMode = "grid"
	ModeList     ViewMode = "list"
	ModeFeatured ViewMode = "featured"
	ModeCompact  ViewMode = "compact"
)

func ParseViewMode(v string) ViewMode {
	switch m := ViewMode(v); m {
	case ModeGrid, ModeList, ModeFeatured, ModeCompact:
		return m
	default:
		return ModeFeatured
	}
}

const EmptyMessage = "No posts match your filters. Try adjusting the search or filters above."

// View is the browse state of one landing page. Changing any filter field
// sends the view back to page 1.
type View struct {
	filter Filter
	page   int
	mode   ViewMode
	// window start chosen by the user, zero when the window follows the page
	windowStart int
}

func NewView() *View {
	return &View{page: 1, mode: ModeFeatured}
}

func (v *View) Filter() Filter { return v.filter }
func (v *View) Page() int      { return v.page }
func (v *View) Mode() ViewMode { return v.mode }

// SetMode switches layout and keeps the current page.
func (v *View) SetMode(m ViewMode) { v.mode = m }

func (v *View) SetSearch(s string) {
	v.filter.Search = s
	v.resetPage()
}

func (v *View) SetAuthor(a AuthorFilter) {
	v.filter.Author = a
	v.resetPage()
}

func (v *View) SetDate(d DateWindow) {
	v.filter.Date = d
	v.resetPage()
}

func (v *View) SetCollection(c CollectionFilter) {
	v.filter.Collection = c
	v.resetPage()
}

func (v *View) SetSort(s SortOrder) {
	v.filter.Sort = s
	v.resetPage()
}

// SetPage records the requested page; it is clamped when the view is
// evaluated against a post list.
func (v *View) SetPage(page int) {
	v.page = max(1, page)
	v.windowStart = 0
}

// ShiftWindow moves the page-number window to start without changing page.
func (v *View) ShiftWindow(start int) { v.windowStart = max(0, start) }

// Reset restores every default. The layout goes back to the grid.
func (v *View) Reset() {
	v.filter = Filter{}
	v.mode = ModeGrid
	v.resetPage()
}

func (v *View) resetPage() {
	v.page = 1
	v.windowStart = 0
}

// Heading summarises the active filters for display above the results.
func (v *View) Heading() string {
	return Heading(v.filter)
}

func Heading(f Filter) string {
	var parts []string
	if name, ok := f.Author.Name(); ok {
		parts = append(parts, "author: "+name)
	}
	if f.Collection != AllCollections {
		parts = append(parts, "collection: "+f.Collection.String())
	}
	if _, ok := f.Date.Days(); ok {
		parts = append(parts, "date: "+f.Date.Label())
	}
	if f.Sort != SortNewest {
		parts = append(parts, "sorted "+f.Sort.Label())
	}

	search := strings.TrimSpace(f.Search)
	switch {
	case search != "" && len(parts) > 0:
		return fmt.Sprintf("Search results for “%s” (%s)", search, strings.Join(parts, ", "))
	case search != "":
		return fmt.Sprintf("Search results for “%s”", search)
	case len(parts) > 0:
		return fmt.Sprintf("Filtered blogs (%s)", strings.Join(parts, ", "))
	default:
		return "All technology & community blogs"
	}
}

// Result is one evaluated page of the browse view.
type Result struct {
	Heading    string
	Mode       ViewMode
	Posts      []models.Post
	Count      int
	Page       int
	TotalPages int
	Window     Window
	Empty      bool
}

// Browse filters, sorts and pages posts for the view. The page held by the
// view is clamped to the resulting page count.
func Browse(posts []models.Post, v *View, now time.Time) Result {
	filtered := Apply(posts, v.filter, now)
	total := TotalPages(len(filtered), PageSize)
	v.page = ClampPage(v.page, total)

	window := NewWindow(v.page, total)
	if v.windowStart > 0 {
		window = WindowAt(v.windowStart, v.page, total)
	}

	page := PageSlice(filtered, v.page, PageSize)
	return Result{
		Heading:    v.Heading(),
		Mode:       v.mode,
		Posts:      page,
		Count:      len(filtered),
		Page:       v.page,
		TotalPages: total,
		Window:     window,
		Empty:      len(page) == 0,
	}
}
