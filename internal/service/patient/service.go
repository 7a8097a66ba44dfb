package patient

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	"github.com/labloom/marketplace-api/pkg/blob"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
)

// Service covers patient self-service: health metrics, favorite doctors,
// profile images, and the home dashboard.
type Service struct {
	metrics  repository.MetricRepository
	bookings repository.BookingRepository
	accounts repository.AccountRepository
	storage  blob.Storage
	now      func() time.Time
}

func NewService(
	metrics repository.MetricRepository,
	bookings repository.BookingRepository,
	accounts repository.AccountRepository,
	storage blob.Storage,
) *Service {
	return &Service{
		metrics:  metrics,
		bookings: bookings,
		accounts: accounts,
		storage:  storage,
		now:      time.Now,
	}
}

type MetricRequest struct {
	Type       string     `json:"type" binding:"required"`
	Value      float64    `json:"value" binding:"required"`
	Unit       string     `json:"unit,omitempty"`
	Note       string     `json:"note,omitempty"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// Dashboard is the patient home screen composition.
type Dashboard struct {
	UpcomingAppointments []*model.Booking      `json:"upcoming_appointments"`
	RecentReports        int                   `json:"recent_reports"`
	LatestMetrics        []*model.HealthMetric `json:"latest_metrics"`
}

// AddMetric records one measurement. Missing timestamps default to now.
func (s *Service) AddMetric(ctx context.Context, account *model.Account, req *MetricRequest) (*model.HealthMetric, error) {
	recordedAt := s.now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	metric := &model.HealthMetric{
		AccountID:  account.ID,
		Type:       req.Type,
		Value:      req.Value,
		Unit:       req.Unit,
		Note:       req.Note,
		RecordedAt: recordedAt,
	}
	if err := s.metrics.Create(ctx, metric); err != nil {
		return nil, apperrors.Storage(err)
	}
	return metric, nil
}

// MetricHistory returns every reading of one type for trend charts.
func (s *Service) MetricHistory(ctx context.Context, account *model.Account, metricType string) ([]*model.HealthMetric, error) {
	if metricType == "" {
		return nil, apperrors.InvalidRequest("metric type is required")
	}
	history, err := s.metrics.ListByType(ctx, account.ID, metricType)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return history, nil
}

// LatestMetrics returns the most recent reading of each type.
func (s *Service) LatestMetrics(ctx context.Context, account *model.Account) ([]*model.HealthMetric, error) {
	latest, err := s.metrics.LatestPerType(ctx, account.ID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return latest, nil
}

// ToggleFavorite adds or removes a doctor from the patient's saved list and
// reports the new state.
func (s *Service) ToggleFavorite(ctx context.Context, patient *model.Account, doctorID uuid.UUID) (bool, error) {
	doctor, err := s.accounts.Get(ctx, doctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, apperrors.NotFound("doctor")
	}
	if err != nil {
		return false, apperrors.Storage(err)
	}
	if doctor.Role != model.RoleDoctor {
		return false, apperrors.InvalidRequest("only doctors can be favorited")
	}

	account, err := s.accounts.Get(ctx, patient.ID)
	if err != nil {
		return false, apperrors.Storage(err)
	}

	favorited := false
	if account.Favorites.Contains(doctorID) {
		kept := account.Favorites[:0]
		for _, id := range account.Favorites {
			if id != doctorID {
				kept = append(kept, id)
			}
		}
		account.Favorites = kept
	} else {
		account.Favorites = append(account.Favorites, doctorID)
		favorited = true
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return false, apperrors.Storage(err)
	}
	return favorited, nil
}

// Favorites resolves the saved doctor list. Doctors that no longer exist are
// silently skipped.
func (s *Service) Favorites(ctx context.Context, patient *model.Account) ([]*model.Account, error) {
	account, err := s.accounts.Get(ctx, patient.ID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	var doctors []*model.Account
	for _, id := range account.Favorites {
		doctor, err := s.accounts.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperrors.Storage(err)
		}
		doctors = append(doctors, doctor)
	}
	return doctors, nil
}

// UploadProfileImage stores the new avatar and drops the previous one.
func (s *Service) UploadProfileImage(ctx context.Context, account *model.Account, filename string, r io.Reader) (string, error) {
	url, err := s.storage.Save("avatars", filename, r)
	if err != nil {
		return "", apperrors.Storage(err)
	}

	current, err := s.accounts.Get(ctx, account.ID)
	if err != nil {
		return "", apperrors.Storage(err)
	}
	if current.ProfileImageURL != nil {
		_ = s.storage.Remove(*current.ProfileImageURL)
	}

	current.ProfileImageURL = &url
	if err := s.accounts.Update(ctx, current); err != nil {
		return "", apperrors.Storage(err)
	}
	return url, nil
}

// HomeDashboard composes the patient home screen: upcoming appointments,
// report activity over the last 30 days, and the latest reading per metric.
func (s *Service) HomeDashboard(ctx context.Context, account *model.Account) (*Dashboard, error) {
	filter := &model.BookingFilter{UserID: &account.ID}
	filter.PageSize = 100
	bookings, _, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	now := s.now()
	recentCutoff := now.AddDate(0, 0, -30)

	dashboard := &Dashboard{UpcomingAppointments: []*model.Booking{}}
	for _, b := range bookings {
		switch b.Status {
		case model.BookingStatusPending, model.BookingStatusConfirmed:
			if !b.Date.Before(now.Truncate(24 * time.Hour)) {
				dashboard.UpcomingAppointments = append(dashboard.UpcomingAppointments, b)
			}
		case model.BookingStatusCompleted:
			if !b.LabReport.IsZero() && b.LabReport.ResultDate != nil && b.LabReport.ResultDate.After(recentCutoff) {
				dashboard.RecentReports++
			}
		}
	}
	sort.Slice(dashboard.UpcomingAppointments, func(i, j int) bool {
		return dashboard.UpcomingAppointments[i].Date.Before(dashboard.UpcomingAppointments[j].Date)
	})

	latest, err := s.metrics.LatestPerType(ctx, account.ID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	dashboard.LatestMetrics = latest
	return dashboard, nil
}
