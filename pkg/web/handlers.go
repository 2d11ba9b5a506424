package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := Status{
		Session:     s.session,
		StartedAt:   s.started,
		Uptime:      s.now().Sub(s.started).Round(time.Second).String(),
		Viewers:     s.cameraHub.Len(),
		Subscribers: s.detectionsHub.Len(),
		Events:      s.history.count(),
	}
	if s.stats != nil {
		stats := s.stats()
		st.Scanner = &stats
	}
	return c.JSON(st)
}

// handleDetections returns retained events, optionally only the last
// ?limit=n of them.
func (s *Server) handleDetections(c *fiber.Ctx) error {
	events := s.history.list()
	if limit := c.QueryInt("limit", 0); limit > 0 && limit < len(events) {
		events = events[len(events)-limit:]
	}
	return c.JSON(fiber.Map{
		"session":    s.session,
		"detections": events,
	})
}
