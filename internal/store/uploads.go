package store

import (
	"fmt"
	"time"
)

// StartUpload journals an upload that is about to be sent.
func (db *DB) StartUpload(uploadID, email, fileName, contentType string, size int64) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO uploads (upload_id, email, file_name, content_type, size_bytes, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'sending', ?, ?)`,
		uploadID, email, fileName, contentType, size, now, now)
	if err != nil {
		return fmt.Errorf("start upload %s: %w", uploadID, err)
	}
	return nil
}

// MarkUploadSent records the backend confirmation notice.
func (db *DB) MarkUploadSent(uploadID, notice string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE uploads SET status = 'sent', notice = ?, updated_at = ? WHERE upload_id = ?`, notice, now, uploadID)
	if err != nil {
		return fmt.Errorf("mark upload sent %s: %w", uploadID, err)
	}
	return nil
}

// MarkUploadFailed records the failure message.
func (db *DB) MarkUploadFailed(uploadID, errMsg string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE uploads SET status = 'failed', error_message = ?, updated_at = ? WHERE upload_id = ?`, errMsg, now, uploadID)
	if err != nil {
		return fmt.Errorf("mark upload failed %s: %w", uploadID, err)
	}
	return nil
}

// ListUploads returns the most recent uploads for email, newest first. An
// empty email lists every account.
func (db *DB) ListUploads(email string, limit int) ([]UploadEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, upload_id, email, file_name, content_type, size_bytes, status, notice, error_message, created_at, updated_at
		FROM uploads
		WHERE ? = '' OR email = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, email, email, limit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []UploadEntry
	for rows.Next() {
		var (
			e                UploadEntry
			created, updated int64
		)
		if err := rows.Scan(&e.ID, &e.UploadID, &e.Email, &e.FileName, &e.ContentType, &e.SizeBytes,
			&e.Status, &e.Notice, &e.ErrorMessage, &created, &updated); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(created)
		e.UpdatedAt = time.UnixMilli(updated)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
