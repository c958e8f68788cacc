package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/ender-crm/internal/database"
	"github.com/isdelr/ender-crm/internal/models"
)

// RecordServiceProvider defines the interface for customer record services.
type RecordServiceProvider interface {
	GetAllRecords(ctx context.Context) ([]models.Record, error)
	GetRecordByID(ctx context.Context, id string) (models.Record, error)
	CreateRecord(ctx context.Context, record models.Record) (models.Record, error)
	UpdateRecord(ctx context.Context, id string, record models.Record) (models.Record, error)
	DeleteRecord(ctx context.Context, id string) error
}

// RecordService provides data access for customer records.
type RecordService struct {
	db *database.DB
}

// NewRecordService creates a new RecordService.
func NewRecordService(db *database.DB) *RecordService {
	return &RecordService{db: db}
}

const recordColumns = "id, created_at, first_name, last_name, email, phone, address, city"

// scanRecord is a helper to scan a record from a row or rows object.
func scanRecord(scanner interface{ Scan(...interface{}) error }) (models.Record, error) {
	var rec models.Record
	err := scanner.Scan(
		&rec.ID, &rec.CreatedAt, &rec.FirstName, &rec.LastName,
		&rec.Email, &rec.Phone, &rec.Address, &rec.City,
	)
	return rec, err
}

// GetAllRecords retrieves every record, oldest first.
func (s *RecordService) GetAllRecords(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+recordColumns+" FROM records ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRecordByID retrieves a single record. It is the single source of truth for existence.
func (s *RecordService) GetRecordByID(ctx context.Context, id string) (models.Record, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind("SELECT "+recordColumns+" FROM records WHERE id = ?"), id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, fmt.Errorf("record %s: %w", id, ErrRecordNotFound)
		}
		return models.Record{}, err
	}
	return rec, nil
}

// CreateRecord stores a new record, assigning its identifier and creation date.
func (s *RecordService) CreateRecord(ctx context.Context, record models.Record) (models.Record, error) {
	record.ID = uuid.New().String()
	record.CreatedAt = time.Now().UTC().Truncate(time.Second)

	const query = `
		INSERT INTO records(id, created_at, first_name, last_name, email, phone, address, city)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		record.ID, record.CreatedAt, record.FirstName, record.LastName,
		record.Email, record.Phone, record.Address, record.City,
	)
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to insert record: %w", err)
	}
	return record, nil
}

// UpdateRecord replaces every field of an existing record except its identifier and creation date.
func (s *RecordService) UpdateRecord(ctx context.Context, id string, record models.Record) (models.Record, error) {
	const query = `
		UPDATE records SET first_name = ?, last_name = ?, email = ?, phone = ?, address = ?, city = ?
		WHERE id = ?`
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		record.FirstName, record.LastName, record.Email,
		record.Phone, record.Address, record.City, id,
	)
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to update record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Record{}, fmt.Errorf("record %s: %w", id, ErrRecordNotFound)
	}
	return s.GetRecordByID(ctx, id)
}

// DeleteRecord removes a record from the database.
func (s *RecordService) DeleteRecord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM records WHERE id = ?"), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %s: %w", id, ErrRecordNotFound)
	}
	return nil
}
