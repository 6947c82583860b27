package server

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"bagportal/internal/middleware"
	"bagportal/internal/models"
	"bagportal/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxAttachmentsPerRequest = 3

// submitRequestBody is the JSON form of an application. Multipart submissions use
// the same field names plus "attachments" files.
type submitRequestBody struct {
	PropertyID  uint                   `json:"property_id" form:"property_id"`
	Property    *service.PropertyInput `json:"property"`
	BagCount    int                    `json:"bag_count" form:"bag_count"`
	ArrivalDate string                 `json:"arrival_date" form:"arrival_date"`
	DepartDate  string                 `json:"depart_date" form:"depart_date"`
	Notes       string                 `json:"notes" form:"notes"`
}

func (s *Server) parseSubmission(c *fiber.Ctx) (service.SubmitInput, error) {
	var body submitRequestBody
	var uploads []service.AttachmentUpload

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return service.SubmitInput{}, badBody()
		}
		value := func(key string) string {
			if v := form.Value[key]; len(v) > 0 {
				return strings.TrimSpace(v[0])
			}
			return ""
		}

		body.ArrivalDate = value("arrival_date")
		body.DepartDate = value("depart_date")
		body.Notes = value("notes")
		if v := value("bag_count"); v != "" {
			if body.BagCount, err = strconv.Atoi(v); err != nil {
				return service.SubmitInput{}, models.NewValidationError("bag_count must be a number")
			}
		}
		if v := value("property_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return service.SubmitInput{}, models.NewValidationError("property_id must be a number")
			}
			body.PropertyID = uint(id)
		} else if v := value("sector_id"); v != "" {
			sectorID, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return service.SubmitInput{}, models.NewValidationError("sector_id must be a number")
			}
			body.Property = &service.PropertyInput{
				SectorID:   uint(sectorID),
				Kind:       value("kind"),
				PostalCode: value("postal_code"),
				Street:     value("street"),
				Building:   value("building"),
				Apartment:  value("apartment"),
			}
		}

		files := form.File["attachments"]
		if len(files) > maxAttachmentsPerRequest {
			return service.SubmitInput{}, models.NewValidationError(
				fmt.Sprintf("at most %d attachments are accepted", maxAttachmentsPerRequest))
		}
		limit := int64(s.config.AttachmentMaxSizeMB) << 20
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				return service.SubmitInput{}, models.NewInternalError(err)
			}
			// Read one byte past the limit so oversize files fail validation.
			data, err := io.ReadAll(io.LimitReader(f, limit+1))
			_ = f.Close()
			if err != nil {
				return service.SubmitInput{}, models.NewInternalError(err)
			}
			uploads = append(uploads, service.AttachmentUpload{Filename: fh.Filename, Data: data})
		}
	} else if err := c.BodyParser(&body); err != nil {
		return service.SubmitInput{}, badBody()
	}

	arrival, err := parseDate("arrival_date", body.ArrivalDate)
	if err != nil {
		return service.SubmitInput{}, err
	}
	depart, err := parseDate("depart_date", body.DepartDate)
	if err != nil {
		return service.SubmitInput{}, err
	}

	return service.SubmitInput{
		PropertyID:  body.PropertyID,
		Property:    body.Property,
		BagCount:    body.BagCount,
		ArrivalDate: arrival,
		DepartDate:  depart,
		Notes:       body.Notes,
		Attachments: uploads,
	}, nil
}

// SubmitRequest godoc
// @Summary Submit a bag request
// @Description Submits an application for an owned property or a new one. Apartments need a certificate attachment (multipart only).
// @Tags requests
// @Accept json,mpfd
// @Produce json
// @Param request body submitRequestBody true "Application"
// @Success 201 {object} service.RequestView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /requests [post]
func (s *Server) SubmitRequest(c *fiber.Ctx) error {
	in, err := s.parseSubmission(c)
	if err != nil {
		return respondError(c, err)
	}

	view, err := s.requestService.Submit(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// ListMyRequests godoc
// @Summary List own bag requests
// @Description Newest first, each with its current free/paid split
// @Tags requests
// @Produce json
// @Success 200 {array} service.RequestView
// @Security BearerAuth
// @Router /requests/me [get]
func (s *Server) ListMyRequests(c *fiber.Ctx) error {
	views, err := s.requestService.ListMine(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(views)
}

// GetPropertyQuota godoc
// @Summary Yearly free bag usage of a property
// @Tags requests
// @Produce json
// @Param id path int true "Property ID"
// @Param year query int false "Calendar year, defaults to the current one"
// @Success 200 {object} quota.Usage
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /properties/{id}/quota [get]
func (s *Server) GetPropertyQuota(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	year := c.QueryInt("year", 0)
	if year < 0 || year > 9999 {
		return respondError(c, models.NewValidationError("Invalid year"))
	}

	usage, err := s.requestService.QuotaUsage(c.UserContext(), middleware.UserID(c), middleware.IsStaff(c), id, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(usage)
}

// GetAttachment godoc
// @Summary Download an attachment
// @Tags requests
// @Produce application/pdf,image/jpeg,image/png
// @Param id path int true "Attachment ID"
// @Success 200 {file} binary
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /attachments/{id} [get]
func (s *Server) GetAttachment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	a, err := s.requestService.GetAttachment(c.UserContext(), middleware.UserID(c), middleware.IsStaff(c), id)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, a.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", a.Filename))
	c.Set("X-Checksum-Blake3", a.Checksum)
	return c.Send(a.Data)
}
