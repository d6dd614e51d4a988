// Package bookings reads settled booking earnings from the platform's
// Postgres database. Booking lifecycle itself is owned elsewhere; this
// package only needs completed bookings whose escrow has been released.
package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	statusCompleted = "completed"
	escrowReleased  = "released"
)

// Reader lists the earnings a user may count towards a withdrawal.
type Reader interface {
	ListSettledEarnings(ctx context.Context, userID string) ([]models.Earning, error)
}

// booking is the slice of the bookings table the engine reads.
type booking struct {
	ID                string          `gorm:"column:id"`
	CompanionID       string          `gorm:"column:companion_id"`
	Status            string          `gorm:"column:status"`
	EscrowStatus      string          `gorm:"column:escrow_status"`
	CompanionEarnings decimal.Decimal `gorm:"column:companion_earnings"`
	EscrowReleasedAt  *time.Time      `gorm:"column:escrow_released_at"`
}

func (booking) TableName() string { return "bookings" }

// Store reads bookings through gorm.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on an open connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres. The engine never writes bookings, so no migration is run.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bookings database: %w", err)
	}
	return db, nil
}

// ListSettledEarnings returns the companion's share of every completed booking
// whose escrow has been released, in release order. Amounts are stored in
// rupees and converted to paise.
func (s *Store) ListSettledEarnings(ctx context.Context, userID string) ([]models.Earning, error) {
	var rows []booking
	err := s.db.WithContext(ctx).
		Select("id", "companion_earnings", "escrow_released_at").
		Where("companion_id = ? AND status = ? AND escrow_status = ?", userID, statusCompleted, escrowReleased).
		Order("escrow_released_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query settled bookings: %w", err)
	}

	earnings := make([]models.Earning, 0, len(rows))
	for _, row := range rows {
		e := models.Earning{
			BookingId: row.ID,
			Amount:    row.CompanionEarnings.Shift(2).Round(0).IntPart(),
		}
		if row.EscrowReleasedAt != nil {
			e.SettledAt = *row.EscrowReleasedAt
		}
		earnings = append(earnings, e)
	}
	return earnings, nil
}

// Empty is a Reader for deployments without a bookings database.
type Empty struct{}

func (Empty) ListSettledEarnings(context.Context, string) ([]models.Earning, error) {
	return nil, nil
}
