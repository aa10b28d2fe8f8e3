package mentors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ApplicationRepository stores onboarding applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	List(ctx context.Context, status ApplicationStatus) ([]Application, error)
	Get(ctx context.Context, id string) (*Application, error)
	UpdateStatus(ctx context.Context, id string, status ApplicationStatus) error
}

// SQLApplicationRepository persists applications in Postgres.
type SQLApplicationRepository struct {
	db *sql.DB
}

// NewSQLApplicationRepository wraps an open database handle.
func NewSQLApplicationRepository(db *sql.DB) *SQLApplicationRepository {
	return &SQLApplicationRepository{db: db}
}

const applicationColumns = `id, name, email, phone, title, company, expertise, bio, experience,
		       education, linkedin, hourly_rate, availability, location, image_ref, status,
		       created_at, updated_at`

func (r *SQLApplicationRepository) Create(ctx context.Context, app *Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	app.CreatedAt, app.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mentor_applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		app.ID, app.Name, app.Email, app.Phone, app.Title, app.Company, pq.Array(app.Expertise),
		app.Bio, app.Experience, app.Education, app.LinkedIn, app.HourlyRate,
		pq.Array(app.Availability), app.Location, app.ImageRef, string(app.Status),
		app.CreatedAt, app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("mentors: insert application: %w", err)
	}
	return nil
}

// List returns applications newest first. An empty status lists all.
func (r *SQLApplicationRepository) List(ctx context.Context, status ApplicationStatus) ([]Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM mentor_applications`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mentors: list applications: %w", err)
	}
	defer rows.Close()

	out := []Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *app)
	}
	return out, rows.Err()
}

func (r *SQLApplicationRepository) Get(ctx context.Context, id string) (*Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM mentor_applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	return app, err
}

func (r *SQLApplicationRepository) UpdateStatus(ctx context.Context, id string, status ApplicationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE mentor_applications SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("mentors: update application status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*Application, error) {
	var app Application
	var status string
	err := row.Scan(&app.ID, &app.Name, &app.Email, &app.Phone, &app.Title, &app.Company,
		pq.Array(&app.Expertise), &app.Bio, &app.Experience, &app.Education, &app.LinkedIn,
		&app.HourlyRate, pq.Array(&app.Availability), &app.Location, &app.ImageRef, &status,
		&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	app.Status = ApplicationStatus(status)
	if app.Expertise == nil {
		app.Expertise = []string{}
	}
	if app.Availability == nil {
		app.Availability = []string{}
	}
	return &app, nil
}

// MemoryApplicationRepository keeps applications in process.
type MemoryApplicationRepository struct {
	mu   sync.RWMutex
	apps map[string]Application
}

func NewMemoryApplicationRepository() *MemoryApplicationRepository {
	return &MemoryApplicationRepository{apps: make(map[string]Application)}
}

func (r *MemoryApplicationRepository) Create(ctx context.Context, app *Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	app.CreatedAt, app.UpdatedAt = now, now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[app.ID] = *app
	return nil
}

func (r *MemoryApplicationRepository) List(ctx context.Context, status ApplicationStatus) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Application{}
	for _, app := range r.apps {
		if status == "" || app.Status == status {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryApplicationRepository) Get(ctx context.Context, id string) (*Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	return &app, nil
}

func (r *MemoryApplicationRepository) UpdateStatus(ctx context.Context, id string, status ApplicationStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return ErrApplicationNotFound
	}
	app.Status = status
	app.UpdatedAt = time.Now().UTC()
	r.apps[id] = app
	return nil
}
