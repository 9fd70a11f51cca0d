package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"starLifeAPI/internal/apperr"
	"starLifeAPI/internal/clock"
	"starLifeAPI/internal/metrics"
	"starLifeAPI/internal/store"
	"starLifeAPI/internal/tier"
	"starLifeAPI/internal/user"
)

type StoreService struct {
	db           *pgxpool.Pool
	clk          clock.Clock
	notifService *NotificationService
}

func NewStoreService(db *pgxpool.Pool, clk clock.Clock, notifService *NotificationService) *StoreService {
	return &StoreService{
		db:           db,
		clk:          clk,
		notifService: notifService,
	}
}

// GetStore returns the active catalog priced for the caller's tier. The
// discount is recomputed from the live streak, never from the stored tier
// name, so a reset streak immediately loses its discount.
func (s *StoreService) GetStore(ctx context.Context, clerkID string) (*store.CatalogResponse, error) {
	u, outcome, err := withGamifiedUser(ctx, s.db, s.clk, clerkID, false, func(tx pgx.Tx, u *user.User) error {
		current := tier.ForStreak(u.Streak)
		if u.Tier != current.Name {
			u.Tier = current.Name
			_, err := tx.Exec(ctx, `UPDATE users SET tier = $2, updated_at = NOW() WHERE id = $1`, u.ID, u.Tier)
			if err != nil {
				return fmt.Errorf("failed to persist tier: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(outcome.BonusWinners) > 0 {
		go notifyBonusWinners(s.notifService, outcome.BonusWinners)
	}

	current := tier.ForStreak(u.Streak)

	rows, err := s.db.Query(ctx, `
		SELECT id, item_key, name, description, category, base_price, is_active, created_at, updated_at
		FROM store_products
		WHERE is_active = true
		ORDER BY category, base_price
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch store products: %w", err)
	}
	defer rows.Close()

	var products []*store.ProductWithDiscount
	for rows.Next() {
		p := &store.ProductWithDiscount{}
		err := rows.Scan(
			&p.ID, &p.ItemKey, &p.Name, &p.Description, &p.Category,
			&p.BasePrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.DiscountPercent = current.DiscountPercent
		p.DiscountedPrice = tier.FinalPrice(p.BasePrice, current.DiscountPercent)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if products == nil {
		products = []*store.ProductWithDiscount{}
	}

	return &store.CatalogResponse{
		Products:        products,
		UserTier:        current.Name,
		DiscountPercent: current.DiscountPercent,
	}, nil
}

// PurchaseProduct buys a catalog product at the tier-discounted price,
// freezing price and tier into the purchase record. Buying a streak freeze
// while one is held fails; otherwise it arms the flag.
func (s *StoreService) PurchaseProduct(ctx context.Context, clerkID string, productID uuid.UUID) (*store.Purchase, error) {
	purchase := &store.Purchase{}

	_, outcome, err := withGamifiedUser(ctx, s.db, s.clk, clerkID, false, func(tx pgx.Tx, u *user.User) error {
		now := s.clk.Now()

		// Inactive products are indistinguishable from absent ones.
		p := &store.Product{}
		err := tx.QueryRow(ctx, `
			SELECT id, item_key, name, description, category, base_price, is_active
			FROM store_products
			WHERE id = $1 AND is_active = true
		`, productID).Scan(
			&p.ID, &p.ItemKey, &p.Name, &p.Description, &p.Category, &p.BasePrice, &p.IsActive,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("product not found")
			}
			return fmt.Errorf("failed to get product: %w", err)
		}

		// The streak freeze is a held consumable, one at a time.
		if p.ItemKey == store.ItemKeyStreakFreeze && u.StreakFreezeAvailable {
			return apperr.New(apperr.KindAlreadyOwned, "streak freeze already held")
		}

		current := tier.ForStreak(u.Streak)

		purchase.ID = uuid.New()
		purchase.UserID = u.ID
		purchase.ProductID = p.ID
		purchase.OriginalPrice = p.BasePrice
		purchase.DiscountApplied = current.DiscountPercent
		purchase.FinalPrice = tier.FinalPrice(p.BasePrice, current.DiscountPercent)
		purchase.TierAtPurchase = current.Name
		purchase.PurchaseDate = now

		_, err = tx.Exec(ctx, `
			INSERT INTO purchases (
				id, user_id, product_id, original_price, discount_applied,
				final_price, tier_at_purchase, purchase_date
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			purchase.ID,
			purchase.UserID,
			purchase.ProductID,
			purchase.OriginalPrice,
			purchase.DiscountApplied,
			purchase.FinalPrice,
			purchase.TierAtPurchase,
			purchase.PurchaseDate,
		)
		if err != nil {
			return fmt.Errorf("failed to create purchase: %w", err)
		}

		if p.ItemKey == store.ItemKeyStreakFreeze {
			u.StreakFreezeAvailable = true
			_, err = tx.Exec(ctx, `
				UPDATE users SET streak_freeze_available = true, updated_at = NOW() WHERE id = $1
			`, u.ID)
			if err != nil {
				return fmt.Errorf("failed to arm streak freeze: %w", err)
			}
		}

		metrics.StorePurchases.WithLabelValues(p.Category).Inc()
		log.Printf("User %s bought %s for %.2f (%d%% off as %s)",
			u.ID, p.Name, purchase.FinalPrice, purchase.DiscountApplied, purchase.TierAtPurchase)

		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(outcome.BonusWinners) > 0 {
		go notifyBonusWinners(s.notifService, outcome.BonusWinners)
	}

	return purchase, nil
}

// GetPurchaseHistory lists the caller's purchases, newest first. Records
// are immutable; prices shown are the prices paid.
func (s *StoreService) GetPurchaseHistory(ctx context.Context, clerkID string) ([]*store.Purchase, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, product_id, original_price, discount_applied,
			   final_price, tier_at_purchase, purchase_date
		FROM purchases
		WHERE user_id = $1
		ORDER BY purchase_date DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*store.Purchase
	for rows.Next() {
		p := &store.Purchase{}
		err := rows.Scan(
			&p.ID, &p.UserID, &p.ProductID, &p.OriginalPrice, &p.DiscountApplied,
			&p.FinalPrice, &p.TierAtPurchase, &p.PurchaseDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}

	if purchases == nil {
		purchases = []*store.Purchase{}
	}

	return purchases, nil
}

// UseStreakFreeze consumes a held streak freeze. It stamps today as a
// completed daily so tomorrow's on-access check sees no gap; the skip flag
// keeps this very request from resetting the streak first.
func (s *StoreService) UseStreakFreeze(ctx context.Context, clerkID string) (*user.User, error) {
	u, outcome, err := withGamifiedUser(ctx, s.db, s.clk, clerkID, true, func(tx pgx.Tx, u *user.User) error {
		if !u.StreakFreezeAvailable {
			return apperr.New(apperr.KindNotAvailable, "no streak freeze held")
		}

		today := clock.DateOf(s.clk.Now())
		u.StreakFreezeAvailable = false
		u.LastDailyCompletion = &today

		_, err := tx.Exec(ctx, `
			UPDATE users
			SET streak_freeze_available = false, last_daily_completion = $2, updated_at = NOW()
			WHERE id = $1
		`, u.ID, today)
		if err != nil {
			return fmt.Errorf("failed to consume streak freeze: %w", err)
		}

		log.Printf("User %s used a streak freeze, streak %d preserved", u.ID, u.Streak)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(outcome.BonusWinners) > 0 {
		go notifyBonusWinners(s.notifService, outcome.BonusWinners)
	}

	return u, nil
}
