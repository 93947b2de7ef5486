package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	qrcode "github.com/skip2/go-qrcode"

	"idCardStudioAPI/internal/assets"
	"idCardStudioAPI/internal/types/design"
)

type DesignService struct {
	db    *pgxpool.Pool
	store *assets.Store
}

func NewDesignService(db *pgxpool.Pool, store *assets.Store) *DesignService {
	return &DesignService{db: db, store: store}
}

// UploadDesign validates and persists a user artwork file, then records
// it so the storefront can attach it to a cart line.
func (s *DesignService) UploadDesign(ctx context.Context, userID, productType string, data []byte) (*design.Design, error) {
	fileName, err := s.store.Save(data)
	if err != nil {
		return nil, err
	}

	d := &design.Design{
		ID:          uuid.New(),
		UserID:      userID,
		FileName:    fileName,
		ProductType: productType,
		CreatedAt:   time.Now(),
	}

	query := `
	INSERT INTO designs (id, user_id, file_name, product_type, created_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.Exec(ctx, query, d.ID, d.UserID, d.FileName, d.ProductType, d.CreatedAt); err != nil {
		s.store.Release(fileName)
		return nil, fmt.Errorf("inserting design: %w", err)
	}
	return d, nil
}

func (s *DesignService) ListDesigns(ctx context.Context, userID string) ([]*design.Design, error) {
	query := `
	SELECT id, user_id, file_name, product_type, created_at
	FROM designs
	WHERE user_id = $1
	ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing designs: %w", err)
	}
	defer rows.Close()

	designs := []*design.Design{}
	for rows.Next() {
		d := &design.Design{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.FileName, &d.ProductType, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning design row: %w", err)
		}
		designs = append(designs, d)
	}
	return designs, rows.Err()
}

// ShareDesign builds a QR code pointing at the public design URL.
func (s *DesignService) ShareDesign(ctx context.Context, userID, designID string) (*design.ShareResponse, error) {
	var fileName string
	err := s.db.QueryRow(ctx,
		`SELECT file_name FROM designs WHERE id = $1 AND user_id = $2`,
		designID, userID,
	).Scan(&fileName)
	if err != nil {
		return nil, fmt.Errorf("design not found: %w", err)
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3333"
	}
	shareURL := fmt.Sprintf("%s/assets/%s", baseURL, fileName)

	pngBytes, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("generating QR png: %w", err)
	}

	return &design.ShareResponse{
		DesignID:     designID,
		ShareURL:     shareURL,
		QrCodeBase64: base64.StdEncoding.EncodeToString(pngBytes),
	}, nil
}

// SaveDownloadRecord writes the telemetry row for a completed export.
// Callers treat failures as log-only; a lost record must never block a
// download.
func (s *DesignService) SaveDownloadRecord(ctx context.Context, req *design.SaveDownloadRecordRequest) error {
	query := `
	INSERT INTO download_records (id, user_id, count, type, status, file_name, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.Exec(ctx, query,
		uuid.New(), req.UserID, req.Count, req.Type, req.Status, req.FileName, time.Now())
	if err != nil {
		return fmt.Errorf("inserting download record: %w", err)
	}
	return nil
}
