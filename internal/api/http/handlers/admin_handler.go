package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civictrack/internal/api/dto"
	"github.com/spec-kit/civictrack/internal/service"
)

// AdminHandler exposes the moderation endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

// ReportedTickets handles GET /admin/reported-tickets.
func (h *AdminHandler) ReportedTickets(c *fiber.Ctx) error {
	tickets, err := h.admin.ListReported(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.AdminTicket, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.AdminTicketFromDomain(&tickets[i]))
	}
	return c.JSON(items)
}

// ClearReports handles GET /admin/clear-reports/:id.
func (h *AdminHandler) ClearReports(c *fiber.Ctx) error {
	if err := h.admin.ClearReports(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Reports cleared successfully"})
}

// BanUser handles GET /admin/ban-user/:email.
func (h *AdminHandler) BanUser(c *fiber.Ctx) error {
	if err := h.admin.SetBanned(c.Context(), c.Params("email"), true); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User banned successfully"})
}

// UnbanUser handles GET /admin/unban-user/:email.
func (h *AdminHandler) UnbanUser(c *fiber.Ctx) error {
	if err := h.admin.SetBanned(c.Context(), c.Params("email"), false); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User unbanned successfully"})
}

// BannedUsers handles GET /admin/banned-users.
func (h *AdminHandler) BannedUsers(c *fiber.Ctx) error {
	accounts, err := h.admin.ListBanned(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.BannedAccountResponse, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, dto.BannedAccountResponse{Email: account.Email, Name: account.Name})
	}
	return c.JSON(items)
}
