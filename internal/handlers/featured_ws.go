package handlers

import (
	"context"
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/kaushiktak19/blog-website/internal/carousel"
	"github.com/kaushiktak19/blog-website/internal/logger"
	"github.com/kaushiktak19/blog-website/internal/metrics"
	"github.com/kaushiktak19/blog-website/internal/models"
)

// CarouselMessage is pushed to the client after every carousel change.
type CarouselMessage struct {
	Seq           uint64               `json:"seq"`
	Phase         carousel.Phase       `json:"phase"`
	Active        int                  `json:"active"`
	Transitioning bool                 `json:"transitioning"`
	Count         int                  `json:"count"`
	Current       *models.PostListItem `json:"current,omitempty"`
}

// CarouselCommand is read from the client. Select picks a slide.
type CarouselCommand struct {
	Select *int `json:"select"`
}

func carouselMessage(s carousel.State[models.PostListItem]) CarouselMessage {
	msg := CarouselMessage{
		Seq:           s.Seq,
		Phase:         s.Phase,
		Active:        s.Active,
		Transitioning: s.Transitioning,
		Count:         s.Count,
	}
	if s.HasCurrent {
		current := s.Current
		msg.Current = &current
	}
	return msg
}

// FeaturedSocket serves one carousel per connection over the latest posts.
// The carousel follows snapshot updates and stops when the client leaves.
func (h *LandingHandler) FeaturedSocket() http.Handler {
	return websocket.Handler(h.serveCarousel)
}

func (h *LandingHandler) serveCarousel(ws *websocket.Conn) {
	defer ws.Close()
	metrics.CarouselSessions.Inc()
	defer metrics.CarouselSessions.Dec()

	ctx, cancel := context.WithCancel(ws.Request().Context())
	defer cancel()

	updated := h.content.Updated()
	c := carousel.New(h.latestItems(), h.carouselOpts...)
	changed := make(chan struct{}, 1)
	c.OnChange(func(carousel.State[models.PostListItem]) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	c.Start()
	defer c.Stop()

	go func() {
		defer cancel()
		for {
			var cmd CarouselCommand
			if err := websocket.JSON.Receive(ws, &cmd); err != nil {
				return
			}
			if cmd.Select != nil {
				c.Select(*cmd.Select)
			}
		}
	}()

	var (
		sent    uint64
		started bool
	)
	send := func() bool {
		state := c.State()
		if started && state.Seq <= sent {
			return true
		}
		if err := websocket.JSON.Send(ws, carouselMessage(state)); err != nil {
			logger.Debug("carousel send failed", "error", err)
			return false
		}
		sent, started = state.Seq, true
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-updated:
			updated = h.content.Updated()
			c.SetItems(h.latestItems())
		case <-changed:
			if !send() {
				return
			}
		}
	}
}

func (h *LandingHandler) latestItems() []models.PostListItem {
	latest, err := h.content.Latest()
	if err != nil {
		return nil
	}
	return models.ListItems(latest)
}
