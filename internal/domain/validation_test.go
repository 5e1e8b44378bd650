package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateAccountID(t *testing.T) {
	t.Parallel()

	t.Run("valid id", func(t *testing.T) {
		if err := ValidateAccountID("user-123"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty id rejected", func(t *testing.T) {
		if err := ValidateAccountID("   "); !errors.Is(err, ErrInvalidAccountID) {
			t.Fatalf("expected ErrInvalidAccountID, got %v", err)
		}
	})

	t.Run("padded id rejected", func(t *testing.T) {
		if err := ValidateAccountID(" user "); !errors.Is(err, ErrInvalidAccountID) {
			t.Fatalf("expected ErrInvalidAccountID, got %v", err)
		}
	})

	t.Run("id too long", func(t *testing.T) {
		if err := ValidateAccountID(strings.Repeat("a", MaxAccountIDLength+1)); !errors.Is(err, ErrInvalidAccountID) {
			t.Fatalf("expected ErrInvalidAccountID, got %v", err)
		}
	})
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := ValidateAmount(0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if err := ValidateAmount(MaxAmount + 1); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateAsset(t *testing.T) {
	t.Parallel()

	if err := ValidateAsset(ListingKindItem, Asset{Title: "Vintage denim jacket"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := ValidateAsset(ListingKindItem, Asset{Title: " "}); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}

	if err := ValidateAsset(ListingKindButtonLot, Asset{ButtonAmount: 0}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if err := ValidateAsset(ListingKind("car"), Asset{}); !errors.Is(err, ErrInvalidListing) {
		t.Fatalf("expected ErrInvalidListing, got %v", err)
	}
}

func TestValidateDuration(t *testing.T) {
	t.Parallel()

	if err := ValidateDuration(72 * time.Hour); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := ValidateDuration(time.Second); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -5)
	if limit != DefaultPageSize || offset != 0 {
		t.Fatalf("expected defaults, got %d/%d", limit, offset)
	}

	limit, _ = ValidatePagination(MaxPageSize+10, 0)
	if limit != MaxPageSize {
		t.Fatalf("expected limit clamped to %d, got %d", MaxPageSize, limit)
	}
}

func TestPrincipalContext(t *testing.T) {
	t.Parallel()

	ctx := WithPrincipal(t.Context(), Principal{AccountID: "alice", Role: RoleMember})
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.AccountID != "alice" || p.Role.CanAdminister() {
		t.Fatalf("unexpected principal %+v", p)
	}

	if _, ok := PrincipalFromContext(t.Context()); ok {
		t.Fatal("expected no principal")
	}
}
