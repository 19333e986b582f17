package auth

import (
	"context"

	"go.uber.org/zap"
)

// OwnershipLookup answers whether a resource belongs to a subject.
type OwnershipLookup interface {
	ResourceBelongsTo(ctx context.Context, resourceID int64, subject string) (bool, error)
}

// Policy decides whether the caller in ctx may mutate a resource.
// Every method is side-effect free and returns false when no trust context
// is installed.
type Policy struct {
	lookup OwnershipLookup
	log    *zap.Logger
}

// NewPolicy constructs a Policy. A nil logger is replaced by a no-op one.
func NewPolicy(lookup OwnershipLookup, log *zap.Logger) *Policy {
	if log == nil {
		log = zap.NewNop()
	}
	return &Policy{lookup: lookup, log: log}
}

// IsOwner reports whether resourceID belongs to the caller. Lookup failures
// count as not owning.
func (p *Policy) IsOwner(ctx context.Context, resourceID int64) bool {
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		return false
	}
	owned, err := p.lookup.ResourceBelongsTo(ctx, resourceID, principal.Subject)
	if err != nil {
		p.log.Error("ownership lookup failed",
			zap.Int64("resource_id", resourceID),
			zap.String("subject", principal.Subject),
			zap.Error(err),
		)
		return false
	}
	return owned
}

// IsAdmin reports whether the caller holds the admin role.
func (p *Policy) IsAdmin(ctx context.Context) bool {
	principal, ok := PrincipalFromContext(ctx)
	return ok && principal.IsAdmin()
}

// CanMutate reports whether the caller owns resourceID or is an admin.
func (p *Policy) CanMutate(ctx context.Context, resourceID int64) bool {
	if p.IsAdmin(ctx) {
		return true
	}
	return p.IsOwner(ctx, resourceID)
}
