package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/model"
)

// ViewerRepository is the viewer storage surface used by the auth service
// and the operator CLI.
type ViewerRepository interface {
	CreateViewer(pin, label string) (*model.Viewer, error)
	GetViewerByPIN(pin string) (*model.Viewer, error)
	UpdateLastLogin(viewerID string) error
}

type PostgresViewerRepository struct {
	DB *sql.DB
}

func NewViewerRepository(db *sql.DB) *PostgresViewerRepository {
	return &PostgresViewerRepository{DB: db}
}

func (r *PostgresViewerRepository) CreateViewer(pin, label string) (*model.Viewer, error) {
	viewer := &model.Viewer{
		ID:    uuid.NewString(),
		PIN:   pin,
		Label: label,
	}
	query := `
		INSERT INTO viewers (id, pin, label)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.DB.QueryRow(query, viewer.ID, viewer.PIN, viewer.Label).Scan(&viewer.CreatedAt)
	if err != nil {
		return nil, err
	}

	return viewer, nil
}

func (r *PostgresViewerRepository) GetViewerByPIN(pin string) (*model.Viewer, error) {
	var viewer model.Viewer
	query := `
		SELECT id, pin, label, created_at, last_login
		FROM viewers
		WHERE pin = $1`

	err := r.DB.QueryRow(query, pin).Scan(
		&viewer.ID,
		&viewer.PIN,
		&viewer.Label,
		&viewer.CreatedAt,
		&viewer.LastLogin,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &viewer, nil
}

func (r *PostgresViewerRepository) ListViewers() ([]model.Viewer, error) {
	query := `
		SELECT id, pin, label, created_at, last_login
		FROM viewers
		ORDER BY created_at ASC`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var viewers []model.Viewer
	for rows.Next() {
		var v model.Viewer
		if err := rows.Scan(&v.ID, &v.PIN, &v.Label, &v.CreatedAt, &v.LastLogin); err != nil {
			return nil, err
		}
		viewers = append(viewers, v)
	}
	return viewers, rows.Err()
}

func (r *PostgresViewerRepository) UpdateLastLogin(viewerID string) error {
	query := `UPDATE viewers SET last_login = $1 WHERE id = $2`
	_, err := r.DB.Exec(query, time.Now(), viewerID)
	return err
}
