package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/messaging"
	"github.com/labloom/marketplace-api/pkg/metrics"
)

const channel = "notifications"

type Service struct {
	repo    repository.NotificationRepository
	broker  messaging.Broker
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

// NewService builds the notification fan-out. broker may be nil; stored
// notifications still work without a running Redis.
func NewService(repo repository.NotificationRepository, broker messaging.Broker, logger *zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{repo: repo, broker: broker, logger: logger, metrics: m}
}

// Notify stores the notification and mirrors it onto the broker. Publish
// failures are logged, not surfaced: delivery is best-effort.
func (s *Service) Notify(ctx context.Context, accountID uuid.UUID, ntype model.NotificationType, title, body string) (*model.Notification, error) {
	notification := &model.Notification{
		AccountID: accountID,
		Type:      ntype,
		Title:     title,
		Body:      body,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, apperrors.Storage(err)
	}

	if s.broker != nil {
		event := messaging.Event{Type: string(ntype), Payload: notification}
		if err := s.broker.Publish(ctx, channel, event); err != nil {
			s.logger.Warn().Err(err).Str("type", string(ntype)).Msg("failed to publish notification")
		}
	}
	if s.metrics != nil {
		s.metrics.NotificationsPushed.WithLabelValues(channel).Inc()
	}
	return notification, nil
}

func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*model.Notification, error) {
	notifications, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return notifications, nil
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}
