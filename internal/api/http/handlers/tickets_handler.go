package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civictrack/internal/api/dto"
	"github.com/spec-kit/civictrack/internal/auth"
	"github.com/spec-kit/civictrack/internal/domain"
	"github.com/spec-kit/civictrack/internal/service"
	"github.com/spec-kit/civictrack/internal/storage"
	apperrors "github.com/spec-kit/civictrack/pkg/util"
)

const maxPhotosPerTicket = 5

// TicketsHandler manages public ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
	guard   *auth.SessionAuth
	photos  storage.PhotoStore
}

// NewTicketsHandler constructs handler. photos may be nil when uploads are
// disabled.
func NewTicketsHandler(ticketService *service.TicketService, guard *auth.SessionAuth, photos storage.PhotoStore) *TicketsHandler {
	return &TicketsHandler{service: ticketService, guard: guard, photos: photos}
}

// List handles GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	query := service.ListQuery{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Title:    c.Query("title"),
		Lat:      parseFloatQuery(c, "lat"),
		Long:     parseFloatQuery(c, "long"),
		Dist:     parseFloatQuery(c, "dist"),
	}

	tickets, err := h.service.List(c.Context(), query)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.TicketSummaryFromDomain(&tickets[i]))
	}
	return c.JSON(items)
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketDetailFromDomain(ticket))
}

// Create handles POST /tickets/create. An explicit anonymous flag bypasses
// authentication; otherwise the session cookie resolves the reporter.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	reporter := domain.AnonymousReporter
	if !req.Anonymous {
		principal, err := h.guard.Resolve(c)
		if err != nil {
			return err
		}
		if principal.Account.Banned {
			return apperrors.NewForbidden("user is banned")
		}
		reporter = principal.Account.Email
	}

	input := service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.Category(req.Category),
		Reporter:    reporter,
	}
	if req.AssignedTo != nil {
		role := domain.Role(*req.AssignedTo)
		input.AssignedTo = &role
	}
	if req.Coordinates != nil {
		if req.Coordinates.Lat == nil || req.Coordinates.Long == nil {
			return apperrors.NewValidationError("coordinates require both lat and long")
		}
		input.Coordinates = &domain.Coordinates{Lat: *req.Coordinates.Lat, Long: *req.Coordinates.Long}
	}

	// Uploads are not rolled back, so the payload must be valid before any
	// photo hits the bucket.
	if err := service.ValidateCreateInput(input); err != nil {
		return err
	}

	photos, err := h.storeUploadedPhotos(c)
	if err != nil {
		return err
	}
	input.Photos = photos

	ticket, err := h.service.Create(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.TicketDetailFromDomain(ticket))
}

// Update handles PUT /tickets/update/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	input := service.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	}
	ticket, err := h.service.UpdateFields(c.Context(), c.Params("id"), input, principal.Account)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketDetailFromDomain(ticket))
}

// SetStatus handles PUT /tickets/set-status/:id.
func (h *TicketsHandler) SetStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Status == nil {
		return apperrors.NewValidationError("status is required")
	}

	ticket, err := h.service.SetStatus(c.Context(), c.Params("id"), domain.TicketStatus(*req.Status), principal.Account)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketDetailFromDomain(ticket))
}

// SetLocation handles PUT /tickets/set-location/:id.
func (h *TicketsHandler) SetLocation(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SetLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Coordinates == nil || req.Coordinates.Lat == nil || req.Coordinates.Long == nil {
		return apperrors.NewValidationError("coordinates are required")
	}

	coords := domain.Coordinates{Lat: *req.Coordinates.Lat, Long: *req.Coordinates.Long}
	ticket, err := h.service.SetLocation(c.Context(), c.Params("id"), coords, principal.Account)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketDetailFromDomain(ticket))
}

// Delete handles DELETE /tickets/delete/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), c.Params("id"), principal.Account); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Ticket deleted successfully"})
}

// Report handles POST /tickets/:id/report. No authentication required.
func (h *TicketsHandler) Report(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	ticket, err := h.service.AddReport(c.Context(), c.Params("id"), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketDetailFromDomain(ticket))
}

func (h *TicketsHandler) storeUploadedPhotos(c *fiber.Ctx) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	files := form.File["photos"]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > maxPhotosPerTicket {
		return nil, apperrors.NewValidationError("too many photos")
	}
	if h.photos == nil {
		return nil, apperrors.NewValidationError("photo uploads are not enabled")
	}

	urls := make([]string, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		url, err := h.photos.Save(c.Context(), header.Filename, file, header.Size, header.Header.Get("Content-Type"))
		_ = file.Close()
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func parseFloatQuery(c *fiber.Ctx, key string) *float64 {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
