package design

import (
	"time"

	"github.com/google/uuid"
)

// Design is a persisted user artwork file, saved before a customized
// product goes into the cart.
type Design struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	FileName    string    `json:"file_name" db:"file_name"`
	ProductType string    `json:"product_type" db:"product_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type UploadDesignRequest struct {
	ProductType string `json:"product_type"`
}

type UploadDesignResponse struct {
	Success  bool   `json:"success"`
	FileName string `json:"fileName,omitempty"`
	DesignID string `json:"designId,omitempty"`
	Message  string `json:"message,omitempty"`
}

// DownloadRecord is the fire-and-forget telemetry row written after a
// card export. Its failure is never surfaced to the user.
type DownloadRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Count     int       `json:"count" db:"count"`
	Type      string    `json:"type" db:"type"` // "single" or "bulk"
	Status    string    `json:"status" db:"status"`
	FileName  string    `json:"file_name" db:"file_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type SaveDownloadRecordRequest struct {
	UserID   string `json:"userId"`
	Count    int    `json:"count"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	FileName string `json:"fileName"`
}

type ShareResponse struct {
	DesignID     string `json:"design_id"`
	ShareURL     string `json:"share_url"`
	QrCodeBase64 string `json:"qr_code_base64"`
}
