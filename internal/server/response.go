package server

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform response shape: a success flag, optional
// human-readable message, optional payload, and a stable machine-readable
// code on errors, distinct from the HTTP status.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
}

func respondOK(c *fiber.Ctx, message string, data any) error {
	return c.JSON(Envelope{Success: true, Message: message, Data: data})
}

func respondCreated(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Message: message, Data: data})
}

func respondData(c *fiber.Ctx, data any) error {
	return c.JSON(Envelope{Success: true, Data: data})
}
