package auth

import (
	"context"
	"errors"

	masterdata "energiebuch/internal/masterdata/domain"
)

var (
	// ErrTenantMismatch indicates resource belongs to a different tenant.
	ErrTenantMismatch = errors.New("tenant mismatch")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("resource not found")
)

// InstallationTenantChecker validates installation tenant ownership.
type InstallationTenantChecker interface {
	EnsureInstallationTenant(ctx context.Context, tenantID, installationID string) error
}

// InstallationChecker checks installation ownership against the
// masterdata installation directory.
type InstallationChecker struct {
	installations masterdata.InstallationRepository
}

// NewInstallationChecker constructs an InstallationChecker.
func NewInstallationChecker(installations masterdata.InstallationRepository) *InstallationChecker {
	if installations == nil {
		return nil
	}
	return &InstallationChecker{installations: installations}
}

// EnsureInstallationTenant verifies the installation belongs to the
// tenant.
func (c *InstallationChecker) EnsureInstallationTenant(ctx context.Context, tenantID, installationID string) error {
	if c == nil || c.installations == nil {
		return nil
	}
	if tenantID == "" || installationID == "" {
		return nil
	}
	installation, err := c.installations.Get(ctx, installationID)
	if err != nil {
		return err
	}
	if installation == nil {
		return ErrNotFound
	}
	if installation.TenantID != tenantID {
		return ErrTenantMismatch
	}
	return nil
}
