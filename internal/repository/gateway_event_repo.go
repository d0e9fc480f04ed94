package repository

import (
	"course-commerce/internal/model"

	"gorm.io/gorm"
)

type GatewayEventRepository interface {
	Create(event *model.GatewayEvent) error
	FindByOrderID(orderID string) ([]model.GatewayEvent, error)
}

type gatewayEventRepo struct {
	db *gorm.DB
}

func NewGatewayEventRepo(db *gorm.DB) GatewayEventRepository {
	return &gatewayEventRepo{db}
}

func (r *gatewayEventRepo) Create(event *model.GatewayEvent) error {
	return r.db.Create(event).Error
}

func (r *gatewayEventRepo) FindByOrderID(orderID string) ([]model.GatewayEvent, error) {
	var events []model.GatewayEvent
	err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&events).Error
	return events, err
}
