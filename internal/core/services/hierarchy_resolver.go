package services

import (
	"context"

	portsrepo "github.com/courierly/wallet-backend/internal/core/ports/repositories"
	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
)

// hierarchyResolver answers ancestry questions from the persisted parent
// chain.
type hierarchyResolver struct {
	walletRepo portsrepo.WalletReader
}

// NewHierarchyResolver creates a resolver backed by the account repository.
func NewHierarchyResolver(walletRepo portsrepo.WalletReader) portssvc.HierarchyResolver {
	return &hierarchyResolver{walletRepo: walletRepo}
}

var _ portssvc.HierarchyResolver = (*hierarchyResolver)(nil)

// IsAncestorOwner reports whether resellerAccountID is a strict ancestor of
// targetAccountID in the account hierarchy.
func (r *hierarchyResolver) IsAncestorOwner(ctx context.Context, resellerAccountID string, targetAccountID string) (bool, error) {
	return r.walletRepo.IsAncestorAccount(ctx, resellerAccountID, targetAccountID)
}
