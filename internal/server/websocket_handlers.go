package server

import (
	"log/slog"

	"bagportal/internal/middleware"
	"bagportal/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// DecisionFeedHandler streams decision events to staff over a websocket.
// @Summary Staff decision feed
// @Description Websocket carrying bag_request.decided events. Pass the token as ?token=.
// @Tags staff
// @Param token query string true "Access token"
// @Success 101
// @Failure 426 {object} models.ErrorResponse
// @Router /ws/decisions [get]
func (s *Server) DecisionFeedHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.LocalUserID).(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			observability.Logger.Warn("Decision feed registration refused",
				slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		observability.Logger.Info("Decision feed connected", slog.Uint64("user_id", uint64(userID)))
		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if s.hub == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "decision feed unavailable"})
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "websocket upgrade required"})
		}
		return upgrade(c)
	}
}
