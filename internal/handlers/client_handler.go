package handlers

import (
	"github.com/clientdesk/backend/internal/dto"
	"github.com/clientdesk/backend/internal/services"
	"github.com/clientdesk/backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

// ClientHandler serves the admin-only client management endpoints.
type ClientHandler struct {
	accounts  *services.AccountService
	validator *validation.Validator
}

func NewClientHandler(accounts *services.AccountService, v *validation.Validator) *ClientHandler {
	return &ClientHandler{accounts: accounts, validator: v}
}

func (h *ClientHandler) List(c *fiber.Ctx) error {
	clients, err := h.accounts.ListClients(c.UserContext())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(clients)
}

func (h *ClientHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateClientRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	client, err := h.accounts.UpdateClient(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(client)
}

func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	resp, err := h.accounts.DeleteClient(c.UserContext(), c.Params("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(resp)
}
