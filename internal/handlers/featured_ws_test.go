package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/kaushiktak19/blog-website/internal/carousel"
	"github.com/kaushiktak19/blog-website/internal/config"
	"github.com/kaushiktak19/blog-website/internal/models"
	"github.com/kaushiktak19/blog-website/internal/service"
)

func dialCarousel(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/featured/ws"
	ws, err := websocket.Dial(url, "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

// receiveUntil reads carousel messages until match accepts one.
func receiveUntil(t *testing.T, ws *websocket.Conn, match func(CarouselMessage) bool) CarouselMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var last uint64
	for {
		var msg CarouselMessage
		require.NoError(t, websocket.JSON.Receive(ws, &msg))
		assert.GreaterOrEqual(t, msg.Seq, last)
		last = msg.Seq
		if match(msg) {
			return msg
		}
	}
}

func TestFeaturedSocket(t *testing.T) {
	src := &stubSource{}
	src.set(makePosts("tech", 5, "Neha Gupta"), makePosts("comm", 3, "Amaan Bhati", "community"))
	svc := service.New(src, nil, config.Site{}, service.Options{})
	require.NoError(t, svc.Refresh(context.Background()))

	h := NewLandingHandler(svc, carousel.WithTimings(time.Hour, 10*time.Millisecond, 10*time.Millisecond))
	router, stop := NewRouter(RouterConfig{CorsAllowedOrigins: []string{"*"}, RevalidateToken: "t", PublicRateLimit: 10, PublicRateWindow: time.Minute}, h)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		stop()
	})

	ws := dialCarousel(t, srv)

	first := receiveUntil(t, ws, func(CarouselMessage) bool { return true })
	assert.Equal(t, 6, first.Count)
	assert.Equal(t, 0, first.Active)
	require.NotNil(t, first.Current)
	assert.Equal(t, "tech-0", first.Current.Slug)

	t.Run("select", func(t *testing.T) {
		index := 3
		require.NoError(t, websocket.JSON.Send(ws, CarouselCommand{Select: &index}))

		msg := receiveUntil(t, ws, func(m CarouselMessage) bool {
			return m.Active == 3 && m.Phase == carousel.Idle
		})
		assert.False(t, msg.Transitioning)
		require.NotNil(t, msg.Current)
	})

	t.Run("follows snapshot updates", func(t *testing.T) {
		src.set(makePosts("tech", 1, "Neha Gupta"), makePosts("comm", 1, "Amaan Bhati", "community"))
		require.NoError(t, svc.Refresh(context.Background()))

		msg := receiveUntil(t, ws, func(m CarouselMessage) bool { return m.Count == 2 })
		assert.Equal(t, 0, msg.Active)
		assert.Equal(t, carousel.Idle, msg.Phase)
	})
}

func TestCarouselMessage(t *testing.T) {
	msg := carouselMessage(carousel.State[models.PostListItem]{Seq: 4, Phase: carousel.Transitioning, Transitioning: true, Count: 0})
	assert.Nil(t, msg.Current)
	assert.EqualValues(t, 4, msg.Seq)
	assert.True(t, msg.Transitioning)
}
