package repository

import (
	"context"
	"errors"

	"safar/internal/model"
)

// ErrDuplicate is returned when a unique column already holds the value
var ErrDuplicate = errors.New("duplicate record")

// Lookups return (nil, nil) when the record does not exist.

// IntentStore keeps trip intents
type IntentStore interface {
	SaveIntent(ctx context.Context, intent *model.TripIntent) error
	GetIntent(ctx context.Context, tripID string) (*model.TripIntent, error)
}

// BookingStore keeps booking confirmations
type BookingStore interface {
	SaveBooking(ctx context.Context, booking *model.BookingConfirmation) error
	GetBooking(ctx context.Context, bookingID string) (*model.BookingConfirmation, error)
}

// UserStore keeps accounts and onboarding traits
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	TouchLastLogin(ctx context.Context, userID string) error
	UpsertTraits(ctx context.Context, traits *model.UserTraits, vector []float32) error
	GetTraits(ctx context.Context, userID string) (*model.UserTraits, error)
}

var (
	_ IntentStore  = (*PostgresRepository)(nil)
	_ BookingStore = (*PostgresRepository)(nil)
	_ UserStore    = (*PostgresRepository)(nil)
	_ IntentStore  = (*MemoryStore)(nil)
)
