package store

import (
	"context"

	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Audit interface {
	Create(ctx context.Context, record model.AuditRecord) error
	List(ctx context.Context, requestID uuid.UUID) (model.AuditRecordList, error)
}

type AuditStore struct {
	db *gorm.DB
}

// Make sure we conform to Audit interface
var _ Audit = (*AuditStore)(nil)

func NewAuditStore(db *gorm.DB) Audit {
	return &AuditStore{db: db}
}

func (a *AuditStore) Create(ctx context.Context, record model.AuditRecord) error {
	return a.getDB(ctx).Create(&record).Error
}

func (a *AuditStore) List(ctx context.Context, requestID uuid.UUID) (model.AuditRecordList, error) {
	var records model.AuditRecordList
	result := a.getDB(ctx).Where("request_id = ?", requestID).Order("created_at").Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

func (a *AuditStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return a.db
}
