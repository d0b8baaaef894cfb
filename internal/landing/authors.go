package landing

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kaushiktak19/blog-website/internal/models"
)

const (
	DefaultAvatar = "/blog/images/author.png"
	// featured author cap when no preferred order is configured
	featuredAuthorLimit = 9
)

// CMS author plugins emit these when no avatar was uploaded.
var placeholderAvatars = map[string]struct{}{
	"imag1": {},
	"image": {},
}

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// ResolveAvatar substitutes fallback, or DefaultAvatar when fallback is
// empty, for missing and placeholder avatar references.
func ResolveAvatar(image, fallback string) string {
	if fallback == "" {
		fallback = DefaultAvatar
	}
	image = strings.TrimSpace(image)
	if image == "" {
		return fallback
	}
	if _, ok := placeholderAvatars[image]; ok {
		return fallback
	}
	return image
}

// FormatAuthorName capitalises every word and lower-cases the rest of it.
func FormatAuthorName(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return AnonymousAuthor
	}
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)
	for i, w := range words {
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}

// NormalizeAuthorName is the directory lookup key: commas become spaces,
// whitespace collapses and each word is title-cased.
func NormalizeAuthorName(name string) string {
	name = strings.ReplaceAll(strings.ToLower(name), ",", " ")
	name = strings.Join(strings.Fields(name), " ")
	return cases.Title(language.Und).String(name)
}

// AuthorSlug is the URL segment of an author page.
func AuthorSlug(name string) string {
	slug := nonSlugRun.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Directory looks up author bios by normalized name.
type Directory struct {
	byName map[string]models.AuthorInfo
}

func NewDirectory(infos []models.AuthorInfo) *Directory {
	d := &Directory{byName: make(map[string]models.AuthorInfo, len(infos))}
	for _, info := range infos {
		d.byName[NormalizeAuthorName(info.Name)] = info
	}
	return d
}

func (d *Directory) Lookup(name string) (models.AuthorInfo, bool) {
	if d == nil {
		return models.AuthorInfo{}, false
	}
	info, ok := d.byName[NormalizeAuthorName(name)]
	return info, ok
}

// FeaturedAuthors picks distinct authors in post order, then moves the ones
// matching a preferred key to the front in preferred order. A key matches
// when it is contained in the author's lower-cased name without spaces.
func FeaturedAuthors(posts []models.Post, preferred []string, dir *Directory, fallbackAvatar string) []models.FeaturedAuthor {
	seen := make(map[string]struct{})
	var picked []models.FeaturedAuthor
	for _, p := range posts {
		name := FormatAuthorName(p.AuthorName)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		picked = append(picked, models.FeaturedAuthor{
			Name:      name,
			Slug:      AuthorSlug(name),
			AvatarURL: ResolveAvatar(p.AuthorImage, fallbackAvatar),
		})
		if len(picked) >= featuredAuthorLimit {
			break
		}
	}

	ordered := make([]models.FeaturedAuthor, 0, len(picked))
	used := make(map[string]struct{}, len(picked))
	for _, key := range preferred {
		key = strings.ToLower(key)
		for _, a := range picked {
			if !strings.Contains(nameKey(a.Name), key) {
				continue
			}
			if _, ok := used[a.Name]; !ok {
				ordered = append(ordered, a)
				used[a.Name] = struct{}{}
			}
			break
		}
	}
	for _, a := range picked {
		if _, ok := used[a.Name]; !ok {
			ordered = append(ordered, a)
		}
	}

	limit := featuredAuthorLimit
	if len(preferred) > 0 {
		limit = len(preferred)
	}
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	for i, a := range ordered {
		a.Bio = "Articles by " + a.Name + " on testing, DevTools and more."
		if info, ok := dir.Lookup(a.Name); ok {
			if info.Description != "" {
				a.Bio = info.Description
			}
			a.LinkedIn = info.LinkedIn
			if info.Image != "" && a.AvatarURL == ResolveAvatar("", fallbackAvatar) {
				a.AvatarURL = info.Image
			}
		}
		ordered[i] = a
	}
	return ordered
}

func nameKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "")
}
