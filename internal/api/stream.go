package api

import (
	"io"

	"github.com/gin-gonic/gin"
)

// streamNotifications pushes the actor's notifications over server-sent
// events as they are created. Notifications for other recipients are
// filtered out of the shared broadcast feed.
func (h *Handler) streamNotifications(c *gin.Context) {
	actor := actorFrom(c)

	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case n, ok := <-ch:
			if !ok {
				return false
			}
			if n.RecipientID != actor.ID {
				return true
			}
			c.SSEvent("notification", n)
			return true
		}
	})
}
