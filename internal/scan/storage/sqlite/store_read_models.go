package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/storage"
)

// EnvelopeStore methods

// PutEnvelope upserts an envelope read-model record.
func (s *Store) PutEnvelope(ctx context.Context, record storage.EnvelopeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("envelope id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO envelopes (id, zip_file_name, document_count, registered_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    zip_file_name = excluded.zip_file_name,
    document_count = excluded.document_count,
    registered_at = excluded.registered_at,
    updated_at = excluded.updated_at`,
		record.ID,
		record.ZipFileName,
		record.DocumentCount,
		toMillis(record.RegisteredAt),
		toMillis(record.UpdatedAt),
	); err != nil {
		return fmt.Errorf("put envelope: %w", err)
	}
	return nil
}

// GetEnvelope retrieves an envelope read-model record by id.
func (s *Store) GetEnvelope(ctx context.Context, id string) (storage.EnvelopeRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EnvelopeRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.EnvelopeRecord{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return storage.EnvelopeRecord{}, fmt.Errorf("envelope id is required")
	}

	var (
		record       storage.EnvelopeRecord
		registeredAt int64
		updatedAt    int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, zip_file_name, document_count, registered_at, updated_at FROM envelopes WHERE id = ?",
		id,
	).Scan(&record.ID, &record.ZipFileName, &record.DocumentCount, &registeredAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EnvelopeRecord{}, storage.ErrNotFound
		}
		return storage.EnvelopeRecord{}, fmt.Errorf("get envelope: %w", err)
	}
	record.RegisteredAt = fromMillis(registeredAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// ListEnvelopes returns envelope records ordered by registration time descending.
func (s *Store) ListEnvelopes(ctx context.Context, limit int) ([]storage.EnvelopeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT id, zip_file_name, document_count, registered_at, updated_at FROM envelopes ORDER BY registered_at DESC LIMIT ?",
		int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list envelopes: %w", err)
	}
	defer rows.Close()

	records := make([]storage.EnvelopeRecord, 0, limit)
	for rows.Next() {
		var (
			record       storage.EnvelopeRecord
			registeredAt int64
			updatedAt    int64
		)
		if err := rows.Scan(&record.ID, &record.ZipFileName, &record.DocumentCount, &registeredAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan envelope: %w", err)
		}
		record.RegisteredAt = fromMillis(registeredAt)
		record.UpdatedAt = fromMillis(updatedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate envelopes: %w", err)
	}
	return records, nil
}

// DocumentStore methods

const documentColumns = "envelope_id, id, file_name, name, case_urn, case_ptiurn, is_sjp, status, status_updated_at, actioned_by, deleted, deleted_at, updated_at"

// PutDocument upserts a document read-model record.
func (s *Store) PutDocument(ctx context.Context, record storage.DocumentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.EnvelopeID) == "" {
		return fmt.Errorf("envelope id is required")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("document id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(envelope_id, id) DO UPDATE SET
    file_name = excluded.file_name,
    name = excluded.name,
    case_urn = excluded.case_urn,
    case_ptiurn = excluded.case_ptiurn,
    is_sjp = excluded.is_sjp,
    status = excluded.status,
    status_updated_at = excluded.status_updated_at,
    actioned_by = excluded.actioned_by,
    deleted = excluded.deleted,
    deleted_at = excluded.deleted_at,
    updated_at = excluded.updated_at`,
		record.EnvelopeID,
		record.ID,
		record.FileName,
		record.Name,
		record.CaseURN,
		record.CasePTIURN,
		boolToInt(record.IsSJP),
		string(record.Status),
		toMillis(record.StatusUpdatedAt),
		record.ActionedBy,
		boolToInt(record.Deleted),
		toNullMillis(record.DeletedAt),
		toMillis(record.UpdatedAt),
	); err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document read-model record.
func (s *Store) GetDocument(ctx context.Context, envelopeID, documentID string) (storage.DocumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.DocumentRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.DocumentRecord{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(envelopeID) == "" {
		return storage.DocumentRecord{}, fmt.Errorf("envelope id is required")
	}
	if strings.TrimSpace(documentID) == "" {
		return storage.DocumentRecord{}, fmt.Errorf("document id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE envelope_id = ? AND id = ?",
		envelopeID, documentID,
	)
	record, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.DocumentRecord{}, storage.ErrNotFound
		}
		return storage.DocumentRecord{}, fmt.Errorf("get document: %w", err)
	}
	return record, nil
}

// ListDocuments returns all document records in an envelope.
func (s *Store) ListDocuments(ctx context.Context, envelopeID string) ([]storage.DocumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(envelopeID) == "" {
		return nil, fmt.Errorf("envelope id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE envelope_id = ? ORDER BY id ASC",
		envelopeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ListDocumentsByStatus returns documents across envelopes in one status.
func (s *Store) ListDocumentsByStatus(ctx context.Context, status envelope.Status, limit int) ([]storage.DocumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(string(status)) == "" {
		return nil, fmt.Errorf("status is required")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE status = ? AND deleted = 0 ORDER BY status_updated_at ASC LIMIT ?",
		string(status), int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list documents by status: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func collectDocuments(rows *sql.Rows) ([]storage.DocumentRecord, error) {
	var records []storage.DocumentRecord
	for rows.Next() {
		record, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return records, nil
}

func scanDocument(row rowScanner) (storage.DocumentRecord, error) {
	var (
		record          storage.DocumentRecord
		isSJP           int
		status          string
		statusUpdatedAt int64
		deleted         int
		deletedAt       sql.NullInt64
		updatedAt       int64
	)
	if err := row.Scan(
		&record.EnvelopeID,
		&record.ID,
		&record.FileName,
		&record.Name,
		&record.CaseURN,
		&record.CasePTIURN,
		&isSJP,
		&status,
		&statusUpdatedAt,
		&record.ActionedBy,
		&deleted,
		&deletedAt,
		&updatedAt,
	); err != nil {
		return storage.DocumentRecord{}, err
	}
	record.IsSJP = isSJP != 0
	record.Status = envelope.Status(status)
	record.StatusUpdatedAt = fromMillis(statusUpdatedAt)
	record.Deleted = deleted != 0
	record.DeletedAt = fromNullMillis(deletedAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
