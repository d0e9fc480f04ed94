package handler

import (
	"course-commerce/internal/model"
	"course-commerce/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CourseHandler struct {
	service service.CatalogService
}

func NewCourseHandler(s service.CatalogService) *CourseHandler {
	return &CourseHandler{service: s}
}

// GetCourses lists the published catalog
// GET /api/v1/courses
func (h *CourseHandler) GetCourses(c *fiber.Ctx) error {
	courses, err := h.service.GetCourses(true)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"data": courses})
}

// GetAllCourses includes drafts
// GET /api/v1/admin/courses
func (h *CourseHandler) GetAllCourses(c *fiber.Ctx) error {
	courses, err := h.service.GetCourses(false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"data": courses})
}

// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	course, err := h.service.GetCourse(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"data": course})
}

// POST /api/v1/admin/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var course model.Course
	if err := c.BodyParser(&course); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.CreateCourse(&course, actorOf(c)); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Course created", "data": course})
}

// PUT /api/v1/admin/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	var course model.Course
	if err := c.BodyParser(&course); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateCourse(id, &course, actorOf(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Course updated", "data": updated})
}

// DELETE /api/v1/admin/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	if err := h.service.DeleteCourse(id, actorOf(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Course deleted"})
}
