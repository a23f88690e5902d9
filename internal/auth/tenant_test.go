package auth

import (
	"context"
	"errors"
	"testing"

	masterdata "energiebuch/internal/masterdata/domain"
)

type stubInstallationRepo struct {
	installations map[string]*masterdata.Installation
	err           error
}

func (s *stubInstallationRepo) Get(_ context.Context, id string) (*masterdata.Installation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.installations[id], nil
}

func TestInstallationCheckerTenantMatch(t *testing.T) {
	checker := NewInstallationChecker(&stubInstallationRepo{
		installations: map[string]*masterdata.Installation{
			"inst-1": {ID: "inst-1", TenantID: "tenant-a", Name: "Haus Meier"},
		},
	})

	if err := checker.EnsureInstallationTenant(context.Background(), "tenant-a", "inst-1"); err != nil {
		t.Fatalf("matching tenant rejected: %v", err)
	}

	err := checker.EnsureInstallationTenant(context.Background(), "tenant-b", "inst-1")
	if !errors.Is(err, ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}

	err = checker.EnsureInstallationTenant(context.Background(), "tenant-a", "inst-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInstallationCheckerRepoError(t *testing.T) {
	repoErr := errors.New("connection reset")
	checker := NewInstallationChecker(&stubInstallationRepo{err: repoErr})

	if err := checker.EnsureInstallationTenant(context.Background(), "tenant-a", "inst-1"); !errors.Is(err, repoErr) {
		t.Fatalf("expected repo error passed through, got %v", err)
	}
}

func TestInstallationCheckerSkipsWithoutIdentity(t *testing.T) {
	checker := NewInstallationChecker(&stubInstallationRepo{})

	if err := checker.EnsureInstallationTenant(context.Background(), "", "inst-1"); err != nil {
		t.Fatalf("empty tenant should skip check: %v", err)
	}
	if err := checker.EnsureInstallationTenant(context.Background(), "tenant-a", ""); err != nil {
		t.Fatalf("empty installation should skip check: %v", err)
	}

	var nilChecker *InstallationChecker
	if err := nilChecker.EnsureInstallationTenant(context.Background(), "tenant-a", "inst-1"); err != nil {
		t.Fatalf("nil checker should be a no-op: %v", err)
	}
}
