package repository

import (
	"course-commerce/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository interface {
	Create(course *model.Course) error
	FindAll(publishedOnly bool) ([]model.Course, error)
	FindByID(id uint) (*model.Course, error)
	FindByIDs(ids []uint) ([]model.Course, error)
	LockByIDs(tx *gorm.DB, ids []uint) ([]model.Course, error)
	LockByID(tx *gorm.DB, id uint) (*model.Course, error)
	Update(tx *gorm.DB, course *model.Course) error
	Delete(id uint) error
}

type courseRepo struct {
	db *gorm.DB
}

func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db}
}

func (r *courseRepo) Create(course *model.Course) error {
	return r.db.Create(course).Error
}

func (r *courseRepo) FindAll(publishedOnly bool) ([]model.Course, error) {
	var courses []model.Course
	q := r.db.Order("id ASC")
	if publishedOnly {
		q = q.Where("status = ?", model.CoursePublished)
	}
	err := q.Find(&courses).Error
	return courses, err
}

func (r *courseRepo) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.db.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) FindByIDs(ids []uint) ([]model.Course, error) {
	var courses []model.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&courses).Error
	return courses, err
}

// LockByIDs takes row locks in id order so concurrent checkouts sharing
// courses queue behind each other instead of deadlocking.
func (r *courseRepo) LockByIDs(tx *gorm.DB, ids []uint) ([]model.Course, error) {
	var courses []model.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) LockByID(tx *gorm.DB, id uint) (*model.Course, error) {
	var course model.Course
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// Update saves inside the caller's transaction so the row lock is kept.
func (r *courseRepo) Update(tx *gorm.DB, course *model.Course) error {
	return tx.Save(course).Error
}

func (r *courseRepo) Delete(id uint) error {
	res := r.db.Delete(&model.Course{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
