//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/usecase"
)

func TestReferralUseCase_Link(t *testing.T) {
	ctx := context.Background()

	t.Run("should record once per pair", func(t *testing.T) {
		repo := newMockReferralRepo()
		uc := usecase.NewReferralUseCase(repo, "@desk_bot", nil, newTestLogger())

		for i := 0; i < 5; i++ {
			added, err := uc.Link(ctx, "12345", 99)
			if err != nil {
				t.Fatalf("Link failed: %v", err)
			}
			if added != (i == 0) {
				t.Errorf("call %d: expected added=%v", i, i == 0)
			}
		}
		if n, _ := repo.Count(ctx, 12345); n != 1 {
			t.Errorf("expected 1 referral, got %d", n)
		}
	})

	t.Run("should reject non-numeric and self referrals", func(t *testing.T) {
		repo := newMockReferralRepo()
		uc := usecase.NewReferralUseCase(repo, "desk_bot", nil, newTestLogger())

		if _, err := uc.Link(ctx, "abc", 1); !errors.Is(err, domain.ErrInvalidReferrer) {
			t.Errorf("expected ErrInvalidReferrer, got %v", err)
		}
		if _, err := uc.Link(ctx, "-4", 1); !errors.Is(err, domain.ErrInvalidReferrer) {
			t.Errorf("expected ErrInvalidReferrer for negative id, got %v", err)
		}
		if _, err := uc.Link(ctx, "7", 7); !errors.Is(err, domain.ErrSelfReferral) {
			t.Errorf("expected ErrSelfReferral, got %v", err)
		}
		if n, _ := repo.Referrers(ctx); n != 0 {
			t.Errorf("expected no ledger entries, got %d", n)
		}
	})

	t.Run("should wrap store errors", func(t *testing.T) {
		repo := newMockReferralRepo()
		repo.err = errBoom
		uc := usecase.NewReferralUseCase(repo, "desk_bot", nil, newTestLogger())
		if _, err := uc.Link(ctx, "10", 1); !errors.Is(err, errBoom) {
			t.Errorf("expected wrapped store error, got %v", err)
		}
	})

	t.Run("concurrent identical starts record one entry", func(t *testing.T) {
		repo := newMockReferralRepo()
		uc := usecase.NewReferralUseCase(repo, "desk_bot", nil, newTestLogger())
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = uc.Link(ctx, "500", 600)
			}()
		}
		wg.Wait()
		if ids, _ := repo.List(ctx, 500); len(ids) != 1 {
			t.Errorf("expected one entry, got %v", ids)
		}
	})
}

func TestReferralUseCase_Summary(t *testing.T) {
	ctx := context.Background()
	repo := newMockReferralRepo()
	uc := usecase.NewReferralUseCase(repo, "@desk_bot", nil, newTestLogger())
	for i := int64(1); i <= 4; i++ {
		_, _ = uc.Link(ctx, "42", i+100)
	}

	sum, err := uc.Summary(ctx, 42)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum.Link != "https://t.me/desk_bot?start=42" {
		t.Errorf("unexpected link %q", sum.Link)
	}
	if sum.Count != 4 || sum.Current == nil || sum.Current.Name != "Bronze" || sum.Next == nil || sum.Next.Name != "Silver" {
		t.Errorf("unexpected summary %+v", sum)
	}
}
