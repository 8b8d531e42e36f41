package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tink/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const applicationColumns = `
	a.id, a.tenant_name, a.tenant_email, a.tenant_phone, a.property_id,
	p.name AS property_name, a.room_id, a.desired_move_in_date, a.rent_budget,
	COALESCE(a.priority_score, 0) AS priority_score, a.status, a.created_at`

const roomColumns = `
	id, property_id, name, monthly_rent, current_occupancy, max_capacity,
	is_vacant, room_type, floor, square_footage, features`

// PostgresRepository reads applications and rooms from the system of record
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
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListPendingApplications returns the pending applications of a property,
// oldest first
func (r *PostgresRepository) ListPendingApplications(ctx context.Context, propertyID int64) ([]model.Application, error) {
	query := `
		SELECT` + applicationColumns + `
		FROM applications a
		LEFT JOIN properties p ON p.id = a.property_id
		WHERE a.property_id = $1 AND a.status = $2
		ORDER BY a.created_at, a.id
	`
	apps := make([]model.Application, 0)
	if err := r.db.SelectContext(ctx, &apps, query, propertyID, model.ApplicationStatusPending); err != nil {
		return nil, fmt.Errorf("failed to list pending applications: %w", err)
	}
	return apps, nil
}

// ListAllPendingApplications returns pending applications across properties
func (r *PostgresRepository) ListAllPendingApplications(ctx context.Context) ([]model.Application, error) {
	query := `
		SELECT` + applicationColumns + `
		FROM applications a
		LEFT JOIN properties p ON p.id = a.property_id
		WHERE a.status = $1
		ORDER BY a.property_id, a.created_at, a.id
	`
	apps := make([]model.Application, 0)
	if err := r.db.SelectContext(ctx, &apps, query, model.ApplicationStatusPending); err != nil {
		return nil, fmt.Errorf("failed to list pending applications: %w", err)
	}
	return apps, nil
}

// GetApplication retrieves a single application by its ID
func (r *PostgresRepository) GetApplication(ctx context.Context, id int64) (*model.Application, error) {
	var app model.Application
	query := `
		SELECT` + applicationColumns + `
		FROM applications a
		LEFT JOIN properties p ON p.id = a.property_id
		WHERE a.id = $1
	`
	err := r.db.GetContext(ctx, &app, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &app, nil
}

// ListRooms returns the rooms of a property ordered by id
func (r *PostgresRepository) ListRooms(ctx context.Context, propertyID int64) ([]model.Room, error) {
	query := `SELECT` + roomColumns + ` FROM rooms WHERE property_id = $1 ORDER BY id`
	rooms := make([]model.Room, 0)
	if err := r.db.SelectContext(ctx, &rooms, query, propertyID); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// ListRoomsForProperties returns the rooms of several properties at once
func (r *PostgresRepository) ListRoomsForProperties(ctx context.Context, propertyIDs []int64) ([]model.Room, error) {
	rooms := make([]model.Room, 0)
	if len(propertyIDs) == 0 {
		return rooms, nil
	}
	query := `SELECT` + roomColumns + ` FROM rooms WHERE property_id = ANY($1) ORDER BY property_id, id`
	if err := r.db.SelectContext(ctx, &rooms, query, pq.Array(propertyIDs)); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}
