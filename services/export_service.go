package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"idCardStudioAPI/internal/bulk"
	"idCardStudioAPI/internal/editor"
	"idCardStudioAPI/internal/notification"
	"idCardStudioAPI/internal/raster"
	"idCardStudioAPI/internal/system"
	"idCardStudioAPI/internal/types/design"
	"idCardStudioAPI/middleware"
	"idCardStudioAPI/utils"
)

// ExportService renders editor sessions into downloadable files and
// reports the downloads as fire-and-forget telemetry.
type ExportService struct {
	renderer      raster.Renderer
	generator     *bulk.Generator
	designs       *DesignService
	notifications *NotificationService
}

func NewExportService(renderer raster.Renderer, designs *DesignService, notifications *NotificationService) *ExportService {
	return &ExportService{
		renderer:      renderer,
		generator:     bulk.NewGenerator(renderer),
		designs:       designs,
		notifications: notifications,
	}
}

// ExportResult is a single-card export: encoded bytes plus the download
// filename.
type ExportResult struct {
	Data     []byte
	FileName string
}

// ExportCard renders the session's scene at export resolution. The
// renderer only ever sees a deep copy of the scene, so edits made while
// the encode runs cannot corrupt the output.
func (s *ExportService) ExportCard(ctx context.Context, sess *editor.Session) (*ExportResult, error) {
	snap := sess.SceneCopy()

	img, err := s.renderer.Render(snap)
	if err != nil {
		return nil, err
	}
	data, err := raster.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	fileName := utils.ExportFilename(snap.Orientation)
	middleware.ExportsTotal.WithLabelValues("single").Inc()
	s.recordDownloadAsync(sess.UserID, 1, "single", fileName)

	return &ExportResult{Data: data, FileName: fileName}, nil
}

// BulkExport runs the serial batch generator over parsed CSV records.
// The success figure reported upstream is the attempted count; skipped
// records ride along separately.
func (s *ExportService) BulkExport(ctx context.Context, sess *editor.Session, records []bulk.Record) (*bulk.Result, string, error) {
	if err := system.CheckBulkCapacity(len(records)); err != nil {
		return nil, "", err
	}

	res, err := s.generator.GenerateBatch(ctx, sess.SceneCopy(), records)
	if err != nil {
		return nil, "", err
	}

	fileName := utils.BatchFilename()
	middleware.ExportsTotal.WithLabelValues("bulk").Inc()
	middleware.BulkRecordsTotal.WithLabelValues("rendered").Add(float64(res.Attempted - res.Skipped))
	middleware.BulkRecordsTotal.WithLabelValues("skipped").Add(float64(res.Skipped))
	s.recordDownloadAsync(sess.UserID, res.Attempted, "bulk", fileName)

	return res, fileName, nil
}

// recordDownloadAsync writes the download record and admin notification
// off the request path. Failures are logged only; the user's download
// must never wait on, or fail because of, telemetry.
func (s *ExportService) recordDownloadAsync(userID string, count int, exportType, fileName string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		req := &design.SaveDownloadRecordRequest{
			UserID:   userID,
			Count:    count,
			Type:     exportType,
			Status:   "completed",
			FileName: fileName,
		}
		if err := s.designs.SaveDownloadRecord(ctx, req); err != nil {
			log.Printf("Export: download record failed (non-fatal): %v", err)
		}

		if s.notifications == nil {
			return
		}
		title := "Card exported"
		if exportType == "bulk" {
			title = "Bulk batch exported"
		}
		body := fmt.Sprintf("%d card(s) exported as %s", count, fileName)
		if _, err := s.notifications.NotifyAdmins(ctx, notification.NotificationDownload, title, body,
			map[string]any{"file": fileName, "count": count}); err != nil {
			log.Printf("Export: admin notification failed (non-fatal): %v", err)
		}
	}()
}
