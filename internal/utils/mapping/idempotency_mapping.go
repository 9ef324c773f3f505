package mapping

import (
	"github.com/courierly/wallet-backend/internal/core/domain"
	"github.com/courierly/wallet-backend/internal/models"
)

// ToModelIdempotencyRecord converts a domain IdempotencyRecord to a model IdempotencyRecord
func ToModelIdempotencyRecord(d domain.IdempotencyRecord) models.IdempotencyRecord {
	return models.IdempotencyRecord{
		Key:           d.Key,
		Scope:         d.Scope,
		Status:        string(d.Status),
		ResultPayload: d.ResultPayload,
		ErrorContext:  d.ErrorContext,
		CreatedAt:     d.CreatedAt,
		LastUpdatedAt: d.LastUpdatedAt,
	}
}

// ToDomainIdempotencyRecord converts a model IdempotencyRecord to a domain IdempotencyRecord
func ToDomainIdempotencyRecord(m models.IdempotencyRecord) domain.IdempotencyRecord {
	return domain.IdempotencyRecord{
		Key:           m.Key,
		Scope:         m.Scope,
		Status:        domain.IdempotencyStatus(m.Status),
		ResultPayload: m.ResultPayload,
		ErrorContext:  m.ErrorContext,
		CreatedAt:     m.CreatedAt,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}
