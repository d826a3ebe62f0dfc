package auth

import (
	"errors"
	"testing"

	"github.com/fabworks/moldline/internal/apperr"
)

func TestAuthorizePermissiveGrantsForeignDomain(t *testing.T) {
	err := Authorize("someone@gmail.com", "manager", false, []string{"fabworks.com"})
	if err != nil {
		t.Errorf("Expected grant in permissive mode, got %v", err)
	}
}

func TestAuthorizeRejectsAnonymous(t *testing.T) {
	err := Authorize("", "manager", false, []string{"fabworks.com"})
	if err == nil {
		t.Fatal("Expected error for empty identity")
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != apperr.CodeUnauthorized {
		t.Errorf("Expected Unauthorized, got %v", err)
	}
}

func TestAuthorizeEnforcedDeniesForeignDomain(t *testing.T) {
	err := Authorize("someone@gmail.com", "quality", true, []string{"fabworks.com"})
	if err == nil {
		t.Fatal("Expected denial in enforced mode")
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != apperr.CodeForbidden {
		t.Errorf("Expected Forbidden, got %v", err)
	}
}

func TestAuthorizeEnforcedGrantsApprovedDomain(t *testing.T) {
	err := Authorize("ops@fabworks.com", "quality", true, []string{"fabworks.com"})
	if err != nil {
		t.Errorf("Expected grant for approved domain, got %v", err)
	}
}

func TestAuthorizeDomainMatchIsCaseInsensitive(t *testing.T) {
	err := Authorize("ops@FabWorks.COM", "quality", true, []string{"fabworks.com"})
	if err != nil {
		t.Errorf("Expected case-insensitive domain match, got %v", err)
	}
}
