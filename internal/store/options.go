package store

import (
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type RequestQueryFilter BaseQuerier

func NewRequestQueryFilter() *RequestQueryFilter {
	return &RequestQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *RequestQueryFilter) ByLocation(locationID uuid.UUID) *RequestQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("location_id = ?", locationID)
	})
	return qf
}

func (qf *RequestQueryFilter) ByStatus(status model.RequestStatus) *RequestQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status)
	})
	return qf
}

func (qf *RequestQueryFilter) ByCandidate(candidateID uuid.UUID) *RequestQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("candidate_id = ?", candidateID)
	})
	return qf
}

func (qf *RequestQueryFilter) ByID(ids []uuid.UUID) *RequestQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id IN ?", ids)
	})
	return qf
}
