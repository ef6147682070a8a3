package controller

import (
	"context"
	"io"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/service"
	"github.com/sefazor/conference-backend/pkg/qrcode"
	"github.com/sefazor/conference-backend/pkg/utils"
)

const (
	checkInPath   = "/check-in"
	defaultQRSize = 256
	maxQRSize     = 1024
	minQRSize     = 64
)

type AdminController struct {
	reportService   *service.ReportService
	scheduleService *service.ScheduleService
	qrService       *qrcode.QRService
	validator       *utils.Validator
}

func NewAdminController(
	reportService *service.ReportService,
	scheduleService *service.ScheduleService,
	qrService *qrcode.QRService,
	validator *utils.Validator,
) *AdminController {
	return &AdminController{
		reportService:   reportService,
		scheduleService: scheduleService,
		qrService:       qrService,
		validator:       validator,
	}
}

func (c *AdminController) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	return c.reportService.Dashboard(ctx)
}

func (c *AdminController) Attendees(ctx context.Context, page, pageSize int) (*models.AttendeePage, error) {
	return c.reportService.Attendees(ctx, page, pageSize)
}

func (c *AdminController) ExportAttendees(ctx context.Context, w io.Writer) error {
	return c.reportService.WriteAttendeesCSV(ctx, w)
}

func (c *AdminController) FeedbackResults(ctx context.Context) (*models.FeedbackResults, error) {
	return c.reportService.FeedbackResults(ctx)
}

func (c *AdminController) ListSessions(ctx context.Context) ([]models.Session, error) {
	return c.scheduleService.ListSessions(ctx)
}

func (c *AdminController) CreateSession(ctx context.Context, req models.SessionRequest) (*models.Session, error) {
	if err := validate(c.validator, req); err != nil {
		return nil, err
	}
	return c.scheduleService.CreateSession(ctx, req)
}

func (c *AdminController) UpdateSession(ctx context.Context, id uint, req models.SessionRequest) (*models.Session, error) {
	if err := validate(c.validator, req); err != nil {
		return nil, err
	}
	return c.scheduleService.UpdateSession(ctx, id, req)
}

func (c *AdminController) DeleteSession(ctx context.Context, id uint) error {
	return c.scheduleService.DeleteSession(ctx, id)
}

// CheckInQR renders the QR code attendees scan at the venue entrance. size is
// clamped to a printable range.
func (c *AdminController) CheckInQR(size int) ([]byte, error) {
	switch {
	case size <= 0:
		size = defaultQRSize
	case size < minQRSize:
		size = minQRSize
	case size > maxQRSize:
		size = maxQRSize
	}
	return c.qrService.GeneratePNG(checkInPath, size)
}
