package landing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaushiktak19/blog-website/internal/models"
)

func makePosts(n int) []models.Post {
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = models.Post{Slug: fmt.Sprintf("p%03d", i)}
	}
	return posts
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 18))
	assert.Equal(t, 1, TotalPages(18, 18))
	assert.Equal(t, 2, TotalPages(19, 18))
	assert.Equal(t, 3, TotalPages(37, 18))
}

func TestPageSlice_DisjointAndExhaustive(t *testing.T) {
	for _, n := range []int{0, 1, 17, 18, 19, 36, 100} {
		for _, size := range []int{1, 5, 18} {
			t.Run(fmt.Sprintf("n=%d size=%d", n, size), func(t *testing.T) {
				posts := makePosts(n)
				seen := make(map[string]int)
				sum := 0
				for page := 1; page <= TotalPages(n, size); page++ {
					chunk := PageSlice(posts, page, size)
					assert.LessOrEqual(t, len(chunk), size)
					sum += len(chunk)
					for _, p := range chunk {
						seen[p.Slug]++
					}
				}
				assert.Equal(t, n, sum)
				assert.Len(t, seen, n)
				for slug, count := range seen {
					assert.Equal(t, 1, count, slug)
				}
			})
		}
	}
}

func TestPageSlice_ClampsOutOfRange(t *testing.T) {
	posts := makePosts(20)
	assert.Equal(t, PageSlice(posts, 1, 18), PageSlice(posts, 0, 18))
	assert.Equal(t, PageSlice(posts, 2, 18), PageSlice(posts, 9, 18))
}

func TestWindow(t *testing.T) {
	t.Run("hidden for a single page", func(t *testing.T) {
		w := NewWindow(1, 1)
		assert.False(t, w.Visible())
		assert.False(t, w.Controls().Visible)
	})

	t.Run("starts at one near the beginning", func(t *testing.T) {
		w := NewWindow(2, 20)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, w.Pages())
		assert.False(t, w.ShowFirst())
		assert.True(t, w.ShowLast())
		assert.False(t, w.ShowPrevJump())
		assert.True(t, w.ShowNextJump())
	})

	t.Run("centres on the current page", func(t *testing.T) {
		w := NewWindow(10, 20)
		assert.Equal(t, []int{7, 8, 9, 10, 11, 12}, w.Pages())
		assert.True(t, w.ShowFirst())
		assert.True(t, w.ShowPrevJump())
	})

	t.Run("sticks to the end", func(t *testing.T) {
		w := NewWindow(20, 20)
		assert.Equal(t, []int{15, 16, 17, 18, 19, 20}, w.Pages())
		assert.False(t, w.ShowLast())
		assert.False(t, w.ShowNextJump())
	})

	t.Run("shows every page when few", func(t *testing.T) {
		w := NewWindow(3, 4)
		assert.Equal(t, []int{1, 2, 3, 4}, w.Pages())
		assert.False(t, w.ShowFirst())
		assert.False(t, w.ShowLast())
	})

	t.Run("jumps by a full window", func(t *testing.T) {
		w := NewWindow(1, 20)
		next := w.Next()
		assert.Equal(t, 7, next.Start)
		assert.Equal(t, 12, next.End)
		assert.Equal(t, 1, next.Current)
		assert.Equal(t, 13, next.Next().Start)
		assert.Equal(t, 15, next.Next().Next().Start)
		assert.Equal(t, 1, next.Prev().Start)
	})

	t.Run("controls", func(t *testing.T) {
		c := NewWindow(1, 3).Controls()
		require.True(t, c.Visible)
		assert.True(t, c.PrevDisabled)
		assert.False(t, c.NextDisabled)
		assert.Equal(t, 1, c.PrevPage)
		assert.Equal(t, 2, c.NextPage)
	})
}
