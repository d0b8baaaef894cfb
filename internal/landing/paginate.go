package landing

import "github.com/kaushiktak19/blog-website/internal/models"

const (
	PageSize = 18
	// WindowSize is the number of page buttons shown at once.
	WindowSize = 6
)

// TotalPages never returns less than 1, so an empty list still has a page.
func TotalPages(count, size int) int {
	if size <= 0 || count <= 0 {
		return 1
	}
	return max(1, (count+size-1)/size)
}

func ClampPage(page, totalPages int) int {
	return min(max(1, page), max(1, totalPages))
}

// PageSlice returns the posts of the given page after clamping it.
func PageSlice(posts []models.Post, page, size int) []models.Post {
	if size <= 0 {
		return nil
	}
	page = ClampPage(page, TotalPages(len(posts), size))
	start := (page - 1) * size
	if start >= len(posts) {
		return []models.Post{}
	}
	end := min(start+size, len(posts))
	return posts[start:end]
}

// Window is the run of page buttons shown by the pagination control.
type Window struct {
	Current int
	Total   int
	Start   int
	End     int
}

// NewWindow centres the window on the current page where possible.
func NewWindow(current, total int) Window {
	total = max(1, total)
	current = ClampPage(current, total)
	start := max(1, current-WindowSize/2)
	end := min(total, start+WindowSize-1)
	start = max(1, end-WindowSize+1)
	return Window{Current: current, Total: total, Start: start, End: end}
}

// WindowAt places the window at an explicit start, as after the user jumps
// a window back or forward without changing page.
func WindowAt(start, current, total int) Window {
	w := NewWindow(current, total)
	w.Start = min(max(1, start), w.maxStart())
	w.End = min(w.Total, w.Start+WindowSize-1)
	return w
}

func (w Window) maxStart() int { return max(1, w.Total-WindowSize+1) }

// Visible is false when there is only a single page.
func (w Window) Visible() bool { return w.Total > 1 }

func (w Window) Pages() []int {
	pages := make([]int, 0, w.End-w.Start+1)
	for p := w.Start; p <= w.End; p++ {
		pages = append(pages, p)
	}
	return pages
}

func (w Window) ShowFirst() bool    { return w.Start > 1 }
func (w Window) ShowLast() bool     { return w.End < w.Total }
func (w Window) ShowPrevJump() bool { return w.Start > 2 }
func (w Window) ShowNextJump() bool { return w.End < w.Total-1 }

// Prev shifts the window back by a full window.
func (w Window) Prev() Window { return WindowAt(w.Start-WindowSize, w.Current, w.Total) }

// Next shifts the window forward by a full window.
func (w Window) Next() Window { return WindowAt(w.Start+WindowSize, w.Current, w.Total) }

// Controls is the serialisable form of a window.
type Controls struct {
	Visible         bool  `json:"visible"`
	Current         int   `json:"current"`
	Total           int   `json:"total"`
	Pages           []int `json:"pages"`
	ShowFirst       bool  `json:"showFirst"`
	ShowLast        bool  `json:"showLast"`
	ShowPrevJump    bool  `json:"showPrevJump"`
	ShowNextJump    bool  `json:"showNextJump"`
	PrevWindowStart int   `json:"prevWindowStart"`
	NextWindowStart int   `json:"nextWindowStart"`
	PrevPage        int   `json:"prevPage"`
	NextPage        int   `json:"nextPage"`
	PrevDisabled    bool  `json:"prevDisabled"`
	NextDisabled    bool  `json:"nextDisabled"`
}

func (w Window) Controls() Controls {
	if !w.Visible() {
		return Controls{Current: w.Current, Total: w.Total, Pages: []int{}}
	}
	return Controls{
		Visible:         true,
		Current:         w.Current,
		Total:           w.Total,
		Pages:           w.Pages(),
		ShowFirst:       w.ShowFirst(),
		ShowLast:        w.ShowLast(),
		ShowPrevJump:    w.ShowPrevJump(),
		ShowNextJump:    w.ShowNextJump(),
		PrevWindowStart: w.Prev().Start,
		NextWindowStart: w.Next().Start,
		PrevPage:        ClampPage(w.Current-1, w.Total),
		NextPage:        ClampPage(w.Current+1, w.Total),
		PrevDisabled:    w.Current <= 1,
		NextDisabled:    w.Current >= w.Total,
	}
}
