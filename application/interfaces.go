package application

import (
	"context"

	"cardswap/application/dto"
)

// TradeNotifier delivers trade notices to Discord.
// Handles are opaque strings the notifier understands; the application only stores them.
type TradeNotifier interface {
	// Notify sends a private notice to a user and returns the message handle
	Notify(ctx context.Context, recipientID int64, notice dto.TradeNoticeDTO) (string, error)

	// Broadcast posts a public notice to the trade channel and returns the message handle.
	// It returns an empty handle when no trade channel is configured.
	Broadcast(ctx context.Context, notice dto.TradeNoticeDTO) (string, error)

	// Edit replaces the message behind a handle with the notice
	Edit(ctx context.Context, handle string, notice dto.TradeNoticeDTO) error
}
