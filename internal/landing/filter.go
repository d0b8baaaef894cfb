package landing

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kaushiktak19/blog-website/internal/models"
)

// wire value meaning "no restriction"
const allValue = "all"

// AuthorFilter restricts posts to one author. The zero value matches any
// author.
type AuthorFilter struct {
	name string
	set  bool
}

func AnyAuthor() AuthorFilter { return AuthorFilter{} }

func AuthorNamed(name string) AuthorFilter { return AuthorFilter{name: name, set: true} }

// ParseAuthor reads the wire form: empty or "all" means any author.
func ParseAuthor(v string) AuthorFilter {
	if v == "" || v == allValue {
		return AnyAuthor()
	}
	return AuthorNamed(v)
}

func (a AuthorFilter) Name() (string, bool) { return a.name, a.set }

func (a AuthorFilter) Matches(author string) bool {
	if !a.set {
		return true
	}
	if author == "" {
		author = AnonymousAuthor
	}
	return author == a.name
}

func (a AuthorFilter) String() string {
	if !a.set {
		return allValue
	}
	return a.name
}

// DateWindow restricts posts to those published within a number of days.
// The zero value matches any date.
type DateWindow struct {
	days int
	set  bool
}

func AnyDate() DateWindow { return DateWindow{} }

func WithinDays(days int) DateWindow { return DateWindow{days: days, set: true} }

// ParseDateWindow accepts "all" or a positive day count. Anything else
// falls back to any date.
func ParseDateWindow(v string) DateWindow {
	days, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || days <= 0 {
		return AnyDate()
	}
	return WithinDays(days)
}

func (d DateWindow) Days() (int, bool) { return d.days, d.set }

// Matches compares against now on every call; results near a day boundary
// may change between evaluations.
func (d DateWindow) Matches(date, now time.Time) bool {
	if !d.set {
		return true
	}
	diffInDays := now.Sub(date).Hours() / 24
	return diffInDays <= float64(d.days)
}

func (d DateWindow) Label() string {
	switch {
	case !d.set:
		return "all dates"
	case d.days == 365:
		return "last year"
	default:
		return fmt.Sprintf("last %d days", d.days)
	}
}

func (d DateWindow) String() string {
	if !d.set {
		return allValue
	}
	return strconv.Itoa(d.days)
}

type CollectionFilter int

const (
	AllCollections CollectionFilter = iota
	OnlyTechnology
	OnlyCommunity
)

func ParseCollection(v string) CollectionFilter {
	switch models.Collection(strings.ToLower(v)) {
	case models.CollectionTechnology:
		return OnlyTechnology
	case models.CollectionCommunity:
		return OnlyCommunity
	default:
		return AllCollections
	}
}

func (c CollectionFilter) Matches(col models.Collection) bool {
	switch c {
	case OnlyTechnology:
		return col == models.CollectionTechnology
	case OnlyCommunity:
		return col == models.CollectionCommunity
	default:
		return true
	}
}

func (c CollectionFilter) String() string {
	switch c {
	case OnlyTechnology:
		return string(models.CollectionTechnology)
	case OnlyCommunity:
		return string(models.CollectionCommunity)
	default:
		return allValue
	}
}

type SortOrder int

const (
	SortNewest SortOrder = iota
	SortOldest
	SortTitleAsc
	SortTitleDesc
)

func ParseSort(v string) SortOrder {
	switch v {
	case "oldest":
		return SortOldest
	case "az":
		return SortTitleAsc
	case "za":
		return SortTitleDesc
	default:
		return SortNewest
	}
}

func (s SortOrder) String() string {
	switch s {
	case SortOldest:
		return "oldest"
	case SortTitleAsc:
		return "az"
	case SortTitleDesc:
		return "za"
	default:
		return "newest"
	}
}

func (s SortOrder) Label() string {
	switch s {
	case SortOldest:
		return "oldest first"
	case SortTitleAsc:
		return "title a → z"
	case SortTitleDesc:
		return "title z → a"
	default:
		return "newest first"
	}
}

// Compare orders two posts for this sort order.
func (s SortOrder) Compare(a, b models.Post) int {
	switch s {
	case SortOldest:
		return a.Date.Compare(b.Date)
	case SortTitleAsc:
		return strings.Compare(a.Title, b.Title)
	case SortTitleDesc:
		return strings.Compare(b.Title, a.Title)
	default:
		return b.Date.Compare(a.Date)
	}
}

// Filter is the full set of browse criteria. The zero value matches
// everything and sorts newest first.
type Filter struct {
	Search     string
	Author     AuthorFilter
	Date       DateWindow
	Collection CollectionFilter
	Sort       SortOrder
}

// Active reports whether any criterion differs from the defaults.
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Search) != "" ||
		f.Author.set ||
		f.Date.set ||
		f.Collection != AllCollections ||
		f.Sort != SortNewest
}

// Match reports whether p satisfies every predicate of f.
func (f Filter) Match(p models.Post, now time.Time) bool {
	return matchesSearch(p, strings.ToLower(f.Search)) &&
		f.Author.Matches(p.AuthorName) &&
		f.Date.Matches(p.Date, now) &&
		f.Collection.Matches(p.Collection)
}

// Apply returns the posts matching f, ordered by f.Sort. Posts with equal
// sort keys keep their input order.
func Apply(posts []models.Post, f Filter, now time.Time) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if f.Match(p, now) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, f.Sort.Compare)
	return out
}

func matchesSearch(p models.Post, search string) bool {
	if search == "" {
		return true
	}
	title, excerpt := p.SearchTitle, p.SearchExcerpt
	if title == "" && p.Title != "" {
		title = strings.ToLower(StripMarkup(p.Title))
	}
	if excerpt == "" && p.Excerpt != "" {
		excerpt = strings.ToLower(StripMarkup(p.Excerpt))
	}
	return strings.Contains(title, search) || strings.Contains(excerpt, search)
}

// AuthorOptions lists the author filter values: "all" followed by every
// distinct author name in post order.
func AuthorOptions(posts []models.Post) []string {
	seen := make(map[string]struct{}, len(posts))
	out := []string{allValue}
	for _, p := range posts {
		name := p.AuthorName
		if name == "" {
			name = AnonymousAuthor
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
