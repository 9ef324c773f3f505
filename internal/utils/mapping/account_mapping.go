package mapping

import (
	"github.com/courierly/wallet-backend/internal/core/domain"
	"github.com/courierly/wallet-backend/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		UserID:          d.UserID,
		Name:            d.Name,
		ParentAccountID: d.ParentAccountID,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
		Balance:         d.Balance,
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		UserID:          m.UserID,
		Name:            m.Name,
		ParentAccountID: m.ParentAccountID,
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
		Balance:         m.Balance,
	}
}
