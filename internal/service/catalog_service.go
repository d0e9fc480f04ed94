package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"course-commerce/internal/model"
	"course-commerce/internal/repository"
	"course-commerce/internal/ws"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Actor is the authenticated operator behind a catalog change.
type Actor struct {
	ID    string
	Name  string
	Email string
}

type CatalogService interface {
	CreateCourse(req *model.Course, actor Actor) error
	UpdateCourse(id uint, req *model.Course, actor Actor) (*model.Course, error)
	DeleteCourse(id uint, actor Actor) error
	GetCourses(publishedOnly bool) ([]model.Course, error)
	GetCourse(id uint) (*model.Course, error)
}

type catalogService struct {
	courseRepo repository.CourseRepository
	db         *gorm.DB
	wsHub      *ws.Hub
}

func NewCatalogService(courseRepo repository.CourseRepository, db *gorm.DB, hub *ws.Hub) CatalogService {
	return &catalogService{
		courseRepo: courseRepo,
		db:         db,
		wsHub:      hub,
	}
}

func (s *catalogService) CreateCourse(req *model.Course, actor Actor) error {
	// 1. Validate
	if err := validate(req); err != nil {
		return err
	}
	if err := checkDiscount(req); err != nil {
		return err
	}
	if req.Status == "" {
		req.Status = model.CourseDraft
	}

	// 2. Audit
	req.ID = 0
	req.CreatedBy = actor.ID
	req.UpdatedBy = actor.ID

	// 3. Save
	if err := s.courseRepo.Create(req); err != nil {
		return err
	}

	// 4. Broadcast
	s.broadcast("course_created", req, actor, fmt.Sprintf("%s created course '%s'", actor.Name, req.Title))
	return nil
}

func (s *catalogService) UpdateCourse(id uint, req *model.Course, actor Actor) (*model.Course, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := checkDiscount(req); err != nil {
		return nil, err
	}

	var updated *model.Course
	// The course row lock serialises edits with checkouts reading capacity.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.courseRepo.LockByID(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		if err != nil {
			return err
		}

		existing.Title = req.Title
		existing.Type = req.Type
		existing.CourseLevel = req.CourseLevel
		existing.MaxStudent = req.MaxStudent
		existing.ShortDescription = req.ShortDescription
		existing.Price = req.Price
		existing.DiscountType = req.DiscountType
		existing.Discount = req.Discount
		if req.Status != "" {
			existing.Status = req.Status
		}
		existing.UpdatedBy = actor.ID

		if err := s.courseRepo.Update(tx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast("course_updated", updated, actor, fmt.Sprintf("%s updated course '%s'", actor.Name, updated.Title))
	return updated, nil
}

func (s *catalogService) DeleteCourse(id uint, actor Actor) error {
	err := s.courseRepo.Delete(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCourseNotFound
	}
	if err != nil {
		return err
	}
	s.broadcast("course_deleted", &model.Course{ID: id}, actor, fmt.Sprintf("%s deleted course #%d", actor.Name, id))
	return nil
}

func (s *catalogService) GetCourses(publishedOnly bool) ([]model.Course, error) {
	return s.courseRepo.FindAll(publishedOnly)
}

func (s *catalogService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	return course, err
}

func checkDiscount(c *model.Course) error {
	if (c.DiscountType == nil) != (c.Discount == nil) {
		return validationReason("discount_type and discount must be set together")
	}
	if c.DiscountType != nil && *c.DiscountType == model.DiscountPercentage && c.Discount.GreaterThan(hundred) {
		return validationReason("percentage discount cannot exceed 100")
	}
	return nil
}

func (s *catalogService) broadcast(action string, course *model.Course, actor Actor, message string) {
	if s.wsHub == nil {
		return
	}
	payload := map[string]interface{}{
		"type":   "catalog_update",
		"action": action,
		"course": map[string]interface{}{
			"id":              course.ID,
			"title":           course.Title,
			"type":            course.Type,
			"max_student":     course.MaxStudent,
			"effective_price": course.EffectivePrice(),
			"status":          course.Status,
		},
		"user": map[string]interface{}{
			"id":    actor.ID,
			"name":  actor.Name,
			"email": actor.Email,
		},
		"message": message,
	}
	msg, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Catalog broadcast encode failed: %v", err)
		return
	}
	s.wsHub.Send(msg)
}
