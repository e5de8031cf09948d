package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"safar/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures
const uniqueViolation = "23505"

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryWithDB wraps an existing handle
func NewPostgresRepositoryWithDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Migrate creates missing tables
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// intentRow is the trip_intents row layout
type intentRow struct {
	TripID             string          `db:"trip_id"`
	Destination        string          `db:"destination"`
	NumDays            int             `db:"num_days"`
	NumPeople          int             `db:"num_people"`
	Season             sql.NullString  `db:"season"`
	ComfortLevel       sql.NullString  `db:"comfort_level"`
	TripType           sql.NullString  `db:"trip_type"`
	Interests          model.JSONArray `db:"interests"`
	BudgetMin          sql.NullFloat64 `db:"budget_min"`
	BudgetMax          sql.NullFloat64 `db:"budget_max"`
	PredictedBudgetINR int64           `db:"predicted_budget_inr"`
}

func (row *intentRow) toModel() *model.TripIntent {
	intent := &model.TripIntent{
		TripID:       row.TripID,
		Destination:  row.Destination,
		NumDays:      row.NumDays,
		NumPeople:    row.NumPeople,
		Season:       row.Season.String,
		ComfortLevel: row.ComfortLevel.String,
		TripType:     row.TripType.String,
		Interests:    row.Interests,
		PredictedBudget: model.PredictedBudget{
			TotalINR: row.PredictedBudgetINR,
			Currency: model.CurrencyINR,
		},
	}
	if row.BudgetMin.Valid || row.BudgetMax.Valid {
		intent.BudgetRange = &model.BudgetRange{Min: row.BudgetMin.Float64, Max: row.BudgetMax.Float64}
	}
	return intent
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// SaveIntent inserts a trip intent
func (r *PostgresRepository) SaveIntent(ctx context.Context, intent *model.TripIntent) error {
	var budgetMin, budgetMax sql.NullFloat64
	if intent.BudgetRange != nil {
		budgetMin = sql.NullFloat64{Float64: intent.BudgetRange.Min, Valid: true}
		budgetMax = sql.NullFloat64{Float64: intent.BudgetRange.Max, Valid: true}
	}

	query := `
		INSERT INTO trip_intents (
			trip_id, destination, num_days, num_people,
			season, comfort_level, trip_type, interests,
			budget_min, budget_max, predicted_budget_inr
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		intent.TripID,
		intent.Destination,
		intent.NumDays,
		intent.NumPeople,
		nullString(intent.Season),
		nullString(intent.ComfortLevel),
		nullString(intent.TripType),
		model.JSONArray(intent.Interests),
		budgetMin,
		budgetMax,
		intent.PredictedBudget.TotalINR,
	)
	if err != nil {
		return fmt.Errorf("failed to save trip intent: %w", err)
	}
	return nil
}

// GetIntent retrieves a trip intent by id
func (r *PostgresRepository) GetIntent(ctx context.Context, tripID string) (*model.TripIntent, error) {
	var row intentRow
	query := `
		SELECT
			trip_id, destination, num_days, num_people,
			season, comfort_level, trip_type, interests,
			budget_min, budget_max, predicted_budget_inr
		FROM trip_intents
		WHERE trip_id = $1
	`
	err := r.db.GetContext(ctx, &row, query, tripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trip intent: %w", err)
	}
	return row.toModel(), nil
}

// SaveBooking inserts a booking confirmation
func (r *PostgresRepository) SaveBooking(ctx context.Context, booking *model.BookingConfirmation) error {
	query := `
		INSERT INTO bookings (
			booking_id, confirmation_number, trip_id, status, payment_status,
			locked_budget, user_contact, itinerary, next_steps, booked_at, valid_until
		) VALUES (
			:booking_id, :confirmation_number, :trip_id, :status, :payment_status,
			:locked_budget, :user_contact, :itinerary, :next_steps, :booked_at, :valid_until
		)
	`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// GetBooking retrieves a booking by id
func (r *PostgresRepository) GetBooking(ctx context.Context, bookingID string) (*model.BookingConfirmation, error) {
	var booking model.BookingConfirmation
	query := `
		SELECT
			booking_id, confirmation_number, COALESCE(trip_id, '') AS trip_id,
			status, payment_status, locked_budget, user_contact, itinerary,
			next_steps, booked_at, valid_until
		FROM bookings
		WHERE booking_id = $1
	`
	err := r.db.GetContext(ctx, &booking, query, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	booking.BookedAt = booking.BookedAt.UTC()
	booking.ValidUntil = booking.ValidUntil.UTC()
	return &booking, nil
}

// CreateUser inserts a user; a taken email yields ErrDuplicate
func (r *PostgresRepository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (user_id, name, email, password_hash, auth_provider)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.Provider)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

const userColumns = `user_id, name, email, password_hash, auth_provider, created_at, last_login`

// GetUserByEmail retrieves a user by email
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetUserByID retrieves a user by id
func (r *PostgresRepository) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
}

func (r *PostgresRepository) getUser(ctx context.Context, query string, arg string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// TouchLastLogin records a successful sign-in
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = NOW() WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// UpsertTraits writes the onboarding answers, one row per user
func (r *PostgresRepository) UpsertTraits(ctx context.Context, traits *model.UserTraits, vector []float32) error {
	query := `
		INSERT INTO user_traits (
			user_id, travel_style, budget_comfort, group_type, interests,
			inferred_pace, inferred_bias, trait_vector, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET travel_style = EXCLUDED.travel_style,
			budget_comfort = EXCLUDED.budget_comfort,
			group_type = EXCLUDED.group_type,
			interests = EXCLUDED.interests,
			inferred_pace = EXCLUDED.inferred_pace,
			inferred_bias = EXCLUDED.inferred_bias,
			trait_vector = EXCLUDED.trait_vector,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		traits.UserID,
		traits.TravelStyle,
		traits.BudgetComfort,
		traits.GroupType,
		traits.Interests,
		traits.InferredPace,
		traits.InferredBias,
		pgvector.NewVector(vector),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert traits: %w", err)
	}
	return nil
}

// GetTraits retrieves a user's onboarding traits
func (r *PostgresRepository) GetTraits(ctx context.Context, userID string) (*model.UserTraits, error) {
	var traits model.UserTraits
	query := `
		SELECT
			user_id,
			COALESCE(travel_style, '') AS travel_style,
			COALESCE(budget_comfort, '') AS budget_comfort,
			COALESCE(group_type, '') AS group_type,
			interests,
			COALESCE(inferred_pace, '') AS inferred_pace,
			COALESCE(inferred_bias, '') AS inferred_bias,
			updated_at
		FROM user_traits
		WHERE user_id = $1
	`
	err := r.db.GetContext(ctx, &traits, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get traits: %w", err)
	}
	return &traits, nil
}
