package service

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/repository"
	"go.uber.org/zap"
)

const (
	recentFeedbackLimit = 10
	topSessionsLimit    = 5
	csvTimeLayout       = "2006-01-02 15:04"
	DefaultPageSize     = 25
	MaxPageSize         = 100
)

var attendeeCSVHeader = []string{"Name", "Email", "Checked In", "Feedback Count", "Last Feedback"}

type ReportService struct {
	reports *repository.ReportRepository
	clock   Clock
	log     *zap.Logger
}

func NewReportService(reports *repository.ReportRepository, clock Clock, log *zap.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		clock:   clock,
		log:     log,
	}
}

func (s *ReportService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var (
		stats models.DashboardStats
		err   error
	)

	if stats.TotalAttendees, err = s.reports.CountAttendees(ctx, false); err != nil {
		return nil, err
	}
	if stats.CheckedInAttendees, err = s.reports.CountAttendees(ctx, true); err != nil {
		return nil, err
	}
	if stats.TotalSessions, err = s.reports.CountSessions(ctx); err != nil {
		return nil, err
	}
	if stats.TotalFeedback, err = s.reports.CountFeedback(ctx, repository.ScopeAll); err != nil {
		return nil, err
	}
	if stats.OverallFeedbackCount, err = s.reports.CountFeedback(ctx, repository.ScopeOverall); err != nil {
		return nil, err
	}
	stats.SessionFeedbackCount = stats.TotalFeedback - stats.OverallFeedbackCount

	avg, err := s.reports.AverageRating(ctx, repository.ScopeAll)
	if err != nil {
		return nil, err
	}
	stats.AverageRating = roundTo(avg, 1)

	if stats.FeedbackLast24h, err = s.reports.CountFeedbackSince(ctx, s.clock.Now().Add(-24*time.Hour)); err != nil {
		return nil, err
	}
	if stats.Distribution, err = s.distribution(ctx, repository.ScopeAll); err != nil {
		return nil, err
	}
	if stats.RecentFeedback, err = s.reports.RecentFeedback(ctx, recentFeedbackLimit); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *ReportService) FeedbackResults(ctx context.Context) (*models.FeedbackResults, error) {
	var (
		res models.FeedbackResults
		err error
	)

	if res.OverallCount, err = s.reports.CountFeedback(ctx, repository.ScopeOverall); err != nil {
		return nil, err
	}
	if res.SessionCount, err = s.reports.CountFeedback(ctx, repository.ScopeSession); err != nil {
		return nil, err
	}

	overallAvg, err := s.reports.AverageRating(ctx, repository.ScopeOverall)
	if err != nil {
		return nil, err
	}
	sessionAvg, err := s.reports.AverageRating(ctx, repository.ScopeSession)
	if err != nil {
		return nil, err
	}
	res.OverallAverage = roundTo(overallAvg, 1)
	res.SessionAverage = roundTo(sessionAvg, 1)

	if res.OverallDistribution, err = s.distribution(ctx, repository.ScopeOverall); err != nil {
		return nil, err
	}
	if res.SessionDistribution, err = s.distribution(ctx, repository.ScopeSession); err != nil {
		return nil, err
	}

	if res.TopSessions, err = s.reports.TopSessions(ctx, topSessionsLimit); err != nil {
		return nil, err
	}
	for i := range res.TopSessions {
		res.TopSessions[i].AverageRating = roundTo(res.TopSessions[i].AverageRating, 1)
	}

	return &res, nil
}

// distribution returns one bucket per rating 1..5, including empty ones.
func (s *ReportService) distribution(ctx context.Context, scope repository.FeedbackScope) ([]models.RatingBucket, error) {
	counts, err := s.reports.RatingCounts(ctx, scope)
	if err != nil {
		return nil, err
	}

	var total int64
	byRating := make(map[int]int64, len(counts))
	for _, c := range counts {
		byRating[c.Rating] = c.Count
		total += c.Count
	}

	buckets := make([]models.RatingBucket, 0, models.MaxRating)
	for r := models.MinRating; r <= models.MaxRating; r++ {
		buckets = append(buckets, models.RatingBucket{
			Rating:     r,
			Count:      byRating[r],
			Percentage: percentage(byRating[r], total),
		})
	}
	return buckets, nil
}

func (s *ReportService) Attendees(ctx context.Context, page, pageSize int) (*models.AttendeePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	rows, total, err := s.reports.Attendees(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &models.AttendeePage{
		Page:      models.Page{Page: page, PageSize: pageSize, Total: total},
		Attendees: rows,
	}, nil
}

// WriteAttendeesCSV streams every attendee as CSV to w.
func (s *ReportService) WriteAttendeesCSV(ctx context.Context, w io.Writer) error {
	rows, _, err := s.reports.Attendees(ctx, 1, 0)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(attendeeCSVHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(attendeeRecord(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	s.log.Info("Exported attendees", zap.Int("rows", len(rows)))
	return nil
}

func attendeeRecord(row models.AttendeeRow) []string {
	checkedIn := "No"
	if row.CheckedIn {
		checkedIn = "Yes"
	}
	last := ""
	if row.LastFeedback != nil {
		last = row.LastFeedback.UTC().Format(csvTimeLayout)
	}
	return []string{
		csvText(row.Name),
		csvText(row.Email),
		checkedIn,
		strconv.FormatInt(row.FeedbackCount, 10),
		last,
	}
}

// csvText keeps spreadsheet tools from reading a cell as a formula.
func csvText(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
