package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/taskforge/taskforge/internal/task"
)

// taskID parses the :id route parameter. A malformed id behaves like an
// unknown one.
func taskID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, task.ErrTaskNotFound
	}
	return id, nil
}

func (s *Server) handleListTasks(c *fiber.Ctx) error {
	records, err := s.tasks.List(c.Context())
	if err != nil {
		return err
	}
	return respondData(c, records)
}

func (s *Server) handleGetTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	record, err := s.tasks.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return respondData(c, record)
}

func (s *Server) handleCreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := req.Validate(); err != nil {
		return err
	}

	record, err := s.tasks.Create(c.Context(), req.Model())
	if err != nil {
		return err
	}
	return respondCreated(c, "Task created successfully", record)
}

func (s *Server) handleUpdateTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := req.Validate(); err != nil {
		return err
	}

	record, err := s.tasks.Update(c.Context(), id, req.Patch())
	if err != nil {
		return err
	}
	return respondOK(c, "Task updated successfully", record)
}

func (s *Server) handleDeleteTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(c.Context(), id); err != nil {
		return err
	}
	return respondOK(c, "Task deleted successfully", nil)
}

func (s *Server) handleListSubtasks(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	records, err := s.tasks.ListSubtasks(c.Context(), id)
	if err != nil {
		return err
	}
	return respondData(c, records)
}

func (s *Server) handleCreateSubtask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req CreateSubtaskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := req.Validate(); err != nil {
		return err
	}

	record, err := s.tasks.CreateSubtask(c.Context(), id, req.Model())
	if err != nil {
		return err
	}
	return respondCreated(c, "Subtask created successfully", record)
}
