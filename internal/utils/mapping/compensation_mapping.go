package mapping

import (
	"github.com/courierly/wallet-backend/internal/core/domain"
	"github.com/courierly/wallet-backend/internal/models"
)

// ToModelCompensationTask converts a domain CompensationTask to a model CompensationTask
func ToModelCompensationTask(d domain.CompensationTask) models.CompensationTask {
	return models.CompensationTask{
		TaskID:        d.TaskID,
		UserID:        d.UserID,
		AccountID:     d.AccountID,
		Action:        string(d.Action),
		Amount:        d.Amount,
		Status:        string(d.Status),
		RetryCount:    d.RetryCount,
		NextAttemptAt: d.NextAttemptAt,
		ErrorContext:  d.ErrorContext,
		ReferenceType: d.ReferenceType,
		ReferenceID:   d.ReferenceID,
		CreatedAt:     d.CreatedAt,
		LastUpdatedAt: d.LastUpdatedAt,
	}
}

// ToDomainCompensationTask converts a model CompensationTask to a domain CompensationTask
func ToDomainCompensationTask(m models.CompensationTask) domain.CompensationTask {
	return domain.CompensationTask{
		TaskID:        m.TaskID,
		UserID:        m.UserID,
		AccountID:     m.AccountID,
		Action:        domain.CompensationAction(m.Action),
		Amount:        m.Amount,
		Status:        domain.CompensationStatus(m.Status),
		RetryCount:    m.RetryCount,
		NextAttemptAt: m.NextAttemptAt,
		ErrorContext:  m.ErrorContext,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		CreatedAt:     m.CreatedAt,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}

// ToDomainCompensationTaskSlice converts model tasks to domain tasks
func ToDomainCompensationTaskSlice(ms []models.CompensationTask) []domain.CompensationTask {
	ds := make([]domain.CompensationTask, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCompensationTask(m)
	}
	return ds
}
