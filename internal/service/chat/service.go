package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/config"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/metrics"
)

const windowExpiredMessage = "chat window has expired"

type Service struct {
	bookings repository.BookingRepository
	messages repository.MessageRepository
	cfg      config.ChatConfig
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(bookings repository.BookingRepository, messages repository.MessageRepository, cfg config.ChatConfig, m *metrics.Metrics) *Service {
	return &Service{
		bookings: bookings,
		messages: messages,
		cfg:      cfg,
		metrics:  m,
		now:      time.Now,
	}
}

// participant resolves the sender's side of the conversation. Exactly the
// booking's patient and doctor may take part.
func (s *Service) participant(booking *model.Booking, accountID uuid.UUID) (model.ParticipantRef, model.ParticipantRef, error) {
	if booking.UserID == accountID {
		sender := model.ParticipantRef{Kind: model.ParticipantPatient, ID: accountID}
		receiver := model.ParticipantRef{Kind: model.ParticipantDoctor}
		if booking.DoctorID != nil {
			receiver.ID = *booking.DoctorID
		}
		return sender, receiver, nil
	}
	if booking.DoctorID != nil && *booking.DoctorID == accountID {
		return model.ParticipantRef{Kind: model.ParticipantDoctor, ID: accountID},
			model.ParticipantRef{Kind: model.ParticipantPatient, ID: booking.UserID},
			nil
	}
	return model.ParticipantRef{}, model.ParticipantRef{}, apperrors.Forbidden("not a participant of this booking")
}

// SendMessage posts into the booking's conversation. Sending closes a fixed
// number of days after the booking date; reading never does.
func (s *Service) SendMessage(ctx context.Context, sender *model.Account, bookingID uuid.UUID, msgType model.MessageType, content string) (*model.Message, error) {
	if content == "" {
		return nil, apperrors.InvalidRequest("content is required")
	}
	if msgType == "" {
		msgType = model.MessageTypeText
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	from, to, err := s.participant(booking, sender.ID)
	if err != nil {
		return nil, err
	}

	windowEnd := booking.Date.AddDate(0, 0, s.cfg.WindowDays)
	if s.now().After(windowEnd) {
		return nil, apperrors.Forbidden(windowExpiredMessage)
	}

	message := &model.Message{
		BookingID: bookingID,
		Sender:    from,
		Receiver:  to,
		Type:      msgType,
		Content:   content,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, apperrors.Storage(err)
	}

	if s.metrics != nil {
		s.metrics.MessagesSent.Inc()
	}
	return message, nil
}

// History returns the conversation oldest-first. Participants keep read
// access after the send window closes.
func (s *Service) History(ctx context.Context, requester *model.Account, bookingID uuid.UUID) ([]*model.Message, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.participant(booking, requester.ID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return messages, nil
}

func (s *Service) getBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("booking")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return booking, nil
}
