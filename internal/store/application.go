package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/loanbridge/apply/internal/model"
)

// ErrNotFound is returned when a requested application does not exist.
var ErrNotFound = errors.New("store: not found")

type ApplicationStore struct {
	db *sql.DB
}

func NewApplicationStore(db *sql.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

// Insert persists an application and returns its assigned ID.
func (s *ApplicationStore) Insert(ctx context.Context, app *model.Application) (int64, error) {
	owners, err := json.Marshal(app.Owners)
	if err != nil {
		return 0, fmt.Errorf("marshal owners: %w", err)
	}
	payload, err := json.Marshal(app.Payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO applications
			(business_legal_name, industry, loan_amount, owners, payload, ein, business_phone, company_website)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		app.BusinessLegalName, app.Industry, app.LoanAmount,
		string(owners), string(payload),
		app.EIN, app.BusinessPhone, app.CompanyWebsite,
	)
	if err != nil {
		return 0, fmt.Errorf("insert application: %w", err)
	}
	return res.LastInsertId()
}

// Get returns one application by ID, or ErrNotFound.
func (s *ApplicationStore) Get(ctx context.Context, id int64) (*model.Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, business_legal_name, industry, loan_amount,
		       owners, payload, ein, business_phone, company_website
		FROM applications WHERE id = ?`, id)

	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return app, err
}

// List returns applications newest first.
func (s *ApplicationStore) List(ctx context.Context, limit, offset int) ([]*model.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, business_legal_name, industry, loan_amount,
		       owners, payload, ein, business_phone, company_website
		FROM applications ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := []*model.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// InsertFile records metadata for one stored upload.
func (s *ApplicationStore) InsertFile(ctx context.Context, f *model.ApplicationFile) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO application_files (application_id, filename, storage_path, size_bytes, doc_type)
		VALUES (?, ?, ?, ?, ?)`,
		f.ApplicationID, f.Filename, f.StoragePath, f.SizeBytes, f.DocType,
	)
	if err != nil {
		return 0, fmt.Errorf("insert application file: %w", err)
	}
	return res.LastInsertId()
}

// Files returns the stored uploads for an application.
func (s *ApplicationStore) Files(ctx context.Context, applicationID int64) ([]*model.ApplicationFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, filename, storage_path, size_bytes, doc_type
		FROM application_files WHERE application_id = ? ORDER BY id`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list application files: %w", err)
	}
	defer rows.Close()

	files := []*model.ApplicationFile{}
	for rows.Next() {
		f := &model.ApplicationFile{}
		if err := rows.Scan(&f.ID, &f.ApplicationID, &f.Filename, &f.StoragePath, &f.SizeBytes, &f.DocType); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*model.Application, error) {
	var (
		app       model.Application
		createdAt string
		owners    string
		payload   string
	)
	err := row.Scan(
		&app.ID, &createdAt, &app.BusinessLegalName, &app.Industry, &app.LoanAmount,
		&owners, &payload, &app.EIN, &app.BusinessPhone, &app.CompanyWebsite,
	)
	if err != nil {
		return nil, err
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		app.CreatedAt = t
	}
	if err := json.Unmarshal([]byte(owners), &app.Owners); err != nil {
		return nil, fmt.Errorf("unmarshal owners: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &app.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &app, nil
}
