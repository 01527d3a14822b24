package handlers

import (
	"github.com/clientdesk/backend/internal/dto"
	"github.com/clientdesk/backend/internal/services"
	"github.com/clientdesk/backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	accounts  *services.AccountService
	validator *validation.Validator
}

func NewAuthHandler(accounts *services.AccountService, v *validation.Validator) *AuthHandler {
	return &AuthHandler{accounts: accounts, validator: v}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	resp, err := h.accounts.Register(c.UserContext(), &req)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	resp, err := h.accounts.Login(c.UserContext(), &req)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(resp)
}
