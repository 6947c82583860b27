package server

import (
	"bagportal/internal/middleware"
	"bagportal/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListSectors godoc
// @Summary List sectors
// @Description Returns the municipal sector catalog
// @Tags sectors
// @Produce json
// @Success 200 {array} models.Sector
// @Router /sectors [get]
func (s *Server) ListSectors(c *fiber.Ctx) error {
	sectors, err := s.requestService.ListSectors(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sectors)
}

// RegisterRequester godoc
// @Summary Register requester profile
// @Description Creates the resident profile of the authenticated user
// @Tags requesters
// @Accept json
// @Produce json
// @Param profile body service.RequesterInput true "Requester profile"
// @Success 201 {object} models.Requester
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /requesters [post]
func (s *Server) RegisterRequester(c *fiber.Ctx) error {
	var in service.RequesterInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badBody())
	}

	requester, err := s.requestService.RegisterRequester(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(requester)
}

// GetMyRequester godoc
// @Summary Get own requester profile
// @Tags requesters
// @Produce json
// @Success 200 {object} models.Requester
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /requesters/me [get]
func (s *Server) GetMyRequester(c *fiber.Ctx) error {
	requester, err := s.requestService.GetRequester(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requester)
}
