package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
)

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	query := `
		INSERT INTO messages (
			id, booking_id, sender, receiver, type, content, read, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	message.CreatedAt = time.Now()
	message.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.BookingID,
		message.Sender,
		message.Receiver,
		message.Type,
		message.Content,
		message.Read,
		message.CreatedAt,
		message.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*model.Message, error) {
	query := `
		SELECT id, booking_id, sender, receiver, type, content, read, created_at, updated_at
		FROM messages
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`
	var messages []*model.Message
	if err := r.db.SelectContext(ctx, &messages, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}
