package server

import (
	"errors"

	"bagportal/internal/middleware"
	"bagportal/internal/models"
	"bagportal/internal/sectordoc"

	"github.com/gofiber/fiber/v2"
)

// DecisionRequest is the body of a staff decision.
type DecisionRequest struct {
	Action string `json:"action" example:"approve"`
}

// DecisionResponse reports the stored status after a decision.
type DecisionResponse struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}

// ListStaffRequests godoc
// @Summary List bag requests for review
// @Description Oldest first, optionally filtered by status, each with its current free/paid split
// @Tags staff
// @Produce json
// @Param status query string false "awaiting, approved or declined"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {array} service.RequestView
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /staff/requests [get]
func (s *Server) ListStaffRequests(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	views, err := s.requestService.ListForStaff(c.UserContext(), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(views)
}

// DecideRequest godoc
// @Summary Approve or decline a bag request
// @Description Stores the decision and mirrors it into the sector document. Repeating the current decision answers 409 with the current status.
// @Tags staff
// @Accept json
// @Produce json
// @Param id path int true "Bag request ID"
// @Param decision body DecisionRequest true "approve or decline"
// @Success 200 {object} DecisionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /staff/requests/{id}/decision [post]
func (s *Server) DecideRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var body DecisionRequest
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, badBody())
	}

	status, err := s.decisionService.Decide(c.UserContext(), id, body.Action, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(DecisionResponse{ID: id, Status: string(status)})
}

// GetSectorDocument godoc
// @Summary Download a sector document
// @Description Returns the sector's approved request snapshot in the configured format (XML or YAML)
// @Tags staff
// @Produce application/xml,application/yaml
// @Param id path int true "Sector ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /staff/sectors/{id}/document [get]
func (s *Server) GetSectorDocument(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.sectorRepo.GetByID(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	doc, err := s.sectorDocs.Load(id)
	if errors.Is(err, sectordoc.ErrNotFound) {
		return respondError(c, models.NewNotFoundError("Sector document", id))
	}
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	codec := s.sectorDocs.Codec()
	data, err := codec.Marshal(doc)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	c.Set(fiber.HeaderContentType, codec.ContentType())
	return c.Send(data)
}
