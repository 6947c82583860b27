package service

import (
	"context"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"bagportal/internal/models"
	"bagportal/internal/quota"
	"bagportal/internal/repository"
	"bagportal/internal/validation"

	"github.com/zeebo/blake3"
)

// RequesterInput is a resident's profile as submitted.
type RequesterInput struct {
	PESEL     string `json:"pesel"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	NIP       string `json:"nip"`
}

// PropertyInput describes a property given inline with an application.
type PropertyInput struct {
	SectorID   uint   `json:"sector_id"`
	Kind       string `json:"kind"`
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	Building   string `json:"building"`
	Apartment  string `json:"apartment"`
}

// AttachmentUpload is one uploaded file.
type AttachmentUpload struct {
	Filename string
	Data     []byte
}

// SubmitInput is a bag application. Either PropertyID or Property must be set.
type SubmitInput struct {
	PropertyID  uint
	Property    *PropertyInput
	BagCount    int
	ArrivalDate *time.Time
	DepartDate  *time.Time
	Notes       string
	Attachments []AttachmentUpload
}

// RequestView is a bag request with its computed quota split.
type RequestView struct {
	models.BagRequest
	Allocation quota.Allocation `json:"allocation"`
}

// RequestLimits bounds application input.
type RequestLimits struct {
	MaxAttachmentBytes int64
	MaxBagsPerRequest  int
}

// RequestService handles resident registration, applications and read views.
type RequestService struct {
	requests    repository.BagRequestRepository
	properties  repository.PropertyRepository
	requesters  repository.RequesterRepository
	sectors     repository.SectorRepository
	attachments repository.AttachmentRepository
	ledger      *quota.Ledger
	limits      RequestLimits
}

// NewRequestService returns a new RequestService.
func NewRequestService(
	requests repository.BagRequestRepository,
	properties repository.PropertyRepository,
	requesters repository.RequesterRepository,
	sectors repository.SectorRepository,
	attachments repository.AttachmentRepository,
	ledger *quota.Ledger,
	limits RequestLimits,
) *RequestService {
	return &RequestService{
		requests:    requests,
		properties:  properties,
		requesters:  requesters,
		sectors:     sectors,
		attachments: attachments,
		ledger:      ledger,
		limits:      limits,
	}
}

func validateRequester(in RequesterInput) error {
	checks := []error{
		validation.ValidatePESEL(in.PESEL),
		validation.ValidatePersonName("first name", in.FirstName),
		validation.ValidatePersonName("last name", in.LastName),
		validation.ValidateEmail(in.Email),
		validation.ValidatePhone(in.Phone),
		validation.ValidateAddress(in.Address),
		validation.ValidateNIP(in.NIP),
	}
	for _, err := range checks {
		if err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	return nil
}

// RegisterRequester creates the profile of the authenticated resident userID.
func (s *RequestService) RegisterRequester(ctx context.Context, userID uint, in RequesterInput) (*models.Requester, error) {
	in.PESEL = strings.TrimSpace(in.PESEL)
	in.Email = strings.TrimSpace(in.Email)
	in.NIP = strings.TrimSpace(in.NIP)
	if err := validateRequester(in); err != nil {
		return nil, err
	}

	requester := &models.Requester{
		ID:        userID,
		PESEL:     in.PESEL,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		NIP:       in.NIP,
	}
	if err := s.requesters.Create(ctx, requester); err != nil {
		return nil, err
	}
	return requester, nil
}

// GetRequester returns the resident's profile.
func (s *RequestService) GetRequester(ctx context.Context, userID uint) (*models.Requester, error) {
	return s.requesters.GetByID(ctx, userID)
}

// ListSectors returns the sector catalog.
func (s *RequestService) ListSectors(ctx context.Context) ([]models.Sector, error) {
	return s.sectors.List(ctx)
}

func (s *RequestService) resolveProperty(ctx context.Context, requesterID uint, in SubmitInput) (*models.Property, error) {
	if in.PropertyID != 0 {
		p, err := s.properties.GetByID(ctx, in.PropertyID)
		if err != nil {
			return nil, err
		}
		if p.RequesterID != requesterID {
			return nil, models.NewForbiddenError("Property belongs to another requester")
		}
		return p, nil
	}

	if in.Property == nil {
		return nil, models.NewValidationError("property_id or property is required")
	}
	pi := in.Property

	kind, err := validation.ParsePropertyKind(pi.Kind)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	p := &models.Property{
		RequesterID: requesterID,
		SectorID:    pi.SectorID,
		Kind:        kind,
		PostalCode:  strings.TrimSpace(pi.PostalCode),
		Street:      strings.TrimSpace(pi.Street),
		Building:    strings.TrimSpace(pi.Building),
		Apartment:   strings.TrimSpace(pi.Apartment),
	}
	for _, err := range []error{
		validation.ValidatePostalCode(p.PostalCode),
		validation.ValidateStreet(p.Street),
		validation.ValidateBuilding(p.Building),
		validation.ValidateApartment(p.Apartment),
	} {
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	if _, err := s.sectors.GetByID(ctx, p.SectorID); err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewValidationError("Unknown sector")
		}
		return nil, err
	}

	return s.properties.FindOrCreate(ctx, p)
}

func (s *RequestService) buildAttachments(uploads []AttachmentUpload) ([]models.Attachment, error) {
	out := make([]models.Attachment, 0, len(uploads))
	for _, u := range uploads {
		contentType := http.DetectContentType(u.Data)
		size := int64(len(u.Data))
		if err := validation.ValidateAttachment(u.Filename, contentType, size, s.limits.MaxAttachmentBytes); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		sum := blake3.Sum256(u.Data)
		out = append(out, models.Attachment{
			Filename:    u.Filename,
			ContentType: contentType,
			Size:        size,
			Checksum:    hex.EncodeToString(sum[:]),
			Data:        u.Data,
		})
	}
	return out, nil
}

// Submit validates and stores a new application in the awaiting state and returns
// it with its current quota split.
func (s *RequestService) Submit(ctx context.Context, requesterID uint, in SubmitInput) (*RequestView, error) {
	if _, err := s.requesters.GetByID(ctx, requesterID); err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewValidationError("Requester profile must be registered first")
		}
		return nil, err
	}

	for _, err := range []error{
		validation.ValidateBagCount(in.BagCount, s.limits.MaxBagsPerRequest),
		validation.ValidateStay(in.ArrivalDate, in.DepartDate),
		validation.ValidateNotes(in.Notes),
	} {
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	attachments, err := s.buildAttachments(in.Attachments)
	if err != nil {
		return nil, err
	}

	property, err := s.resolveProperty(ctx, requesterID, in)
	if err != nil {
		return nil, err
	}
	if property.Kind == models.PropertyKindApartment && len(attachments) == 0 {
		return nil, models.NewValidationError("Apartments require an ownership or tenancy certificate attachment")
	}

	req := &models.BagRequest{
		PropertyID:  property.ID,
		RequesterID: requesterID,
		Status:      models.BagRequestStatusAwaiting,
		BagCount:    in.BagCount,
		ArrivalDate: in.ArrivalDate,
		DepartDate:  in.DepartDate,
		Notes:       in.Notes,
		Attachments: attachments,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	alloc, err := s.ledger.Allocate(ctx, EntryOf(req))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	view := &RequestView{BagRequest: *req, Allocation: alloc}
	view.Property = property
	view.Attachments = make([]models.Attachment, len(req.Attachments))
	for i, a := range req.Attachments {
		a.Data = nil
		view.Attachments[i] = a
	}
	return view, nil
}

func (s *RequestService) withAllocations(ctx context.Context, reqs []models.BagRequest) ([]RequestView, error) {
	views := make([]RequestView, 0, len(reqs))
	for i := range reqs {
		alloc, err := s.ledger.Allocate(ctx, EntryOf(&reqs[i]))
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		views = append(views, RequestView{BagRequest: reqs[i], Allocation: alloc})
	}
	return views, nil
}

// ListMine returns the resident's requests, newest first.
func (s *RequestService) ListMine(ctx context.Context, requesterID uint) ([]RequestView, error) {
	reqs, err := s.requests.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.withAllocations(ctx, reqs)
}

// ListForStaff returns requests filtered by status ("" for all), oldest first.
func (s *RequestService) ListForStaff(ctx context.Context, status string, limit, offset int) ([]RequestView, error) {
	st := models.BagRequestStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, models.NewValidationError("status must be one of: awaiting, approved, declined")
	}
	reqs, err := s.requests.ListByStatus(ctx, st, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.withAllocations(ctx, reqs)
}

// QuotaUsage reports a property's yearly entitlement. Residents may only query their own properties.
func (s *RequestService) QuotaUsage(ctx context.Context, userID uint, isStaff bool, propertyID uint, year int) (quota.Usage, error) {
	p, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return quota.Usage{}, err
	}
	if !isStaff && p.RequesterID != userID {
		return quota.Usage{}, models.NewForbiddenError("Property belongs to another requester")
	}
	if year == 0 {
		year = quota.Year(time.Now())
	}
	usage, err := s.ledger.Usage(ctx, propertyID, year)
	if err != nil {
		return quota.Usage{}, models.NewInternalError(err)
	}
	return usage, nil
}

// GetAttachment returns an attachment with its payload to its owner or to staff.
func (s *RequestService) GetAttachment(ctx context.Context, userID uint, isStaff bool, id uint) (*models.Attachment, error) {
	if !isStaff {
		owner, err := s.attachments.OwnerOf(ctx, id)
		if err != nil {
			return nil, err
		}
		if owner != userID {
			return nil, models.NewForbiddenError("Attachment belongs to another requester")
		}
	}
	return s.attachments.GetByID(ctx, id)
}
