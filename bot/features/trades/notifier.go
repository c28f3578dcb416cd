package trades

import (
	"context"
	"fmt"
	"strings"

	"cardswap/application"
	"cardswap/application/dto"
	"cardswap/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Messenger is the part of the Discord session the notifier needs
type Messenger interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// NameResolver looks up a display name for embed text where mentions do not render
type NameResolver interface {
	DisplayName(ctx context.Context, discordID int64) string
}

// Notifier delivers trade notices as Discord messages.
// Handles have the form "<channelID>:<messageID>".
type Notifier struct {
	messenger      Messenger
	names          NameResolver
	tradeChannelID string
}

var _ application.TradeNotifier = (*Notifier)(nil)

// NewNotifier creates a notifier. An empty tradeChannelID disables listings; names may be nil.
func NewNotifier(messenger Messenger, tradeChannelID string, names NameResolver) *Notifier {
	return &Notifier{
		messenger:      messenger,
		names:          names,
		tradeChannelID: tradeChannelID,
	}
}

// Notify sends a notice to a user's DMs
func (n *Notifier) Notify(ctx context.Context, recipientID int64, notice dto.TradeNoticeDTO) (string, error) {
	channel, err := n.messenger.UserChannelCreate(common.FormatUserID(recipientID), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to open DM channel with %d: %w", recipientID, err)
	}

	return n.send(ctx, channel.ID, notice)
}

// Broadcast posts a listing to the trade channel. It returns an empty handle when no channel is configured.
func (n *Notifier) Broadcast(ctx context.Context, notice dto.TradeNoticeDTO) (string, error) {
	if n.tradeChannelID == "" {
		return "", nil
	}
	return n.send(ctx, n.tradeChannelID, notice)
}

// Edit replaces the content of a previously sent message
func (n *Notifier) Edit(ctx context.Context, handle string, notice dto.TradeNoticeDTO) error {
	channelID, messageID, err := parseHandle(handle)
	if err != nil {
		return err
	}

	embeds := []*discordgo.MessageEmbed{n.embed(ctx, notice)}
	components := CreateNoticeComponents(notice)

	_, err = n.messenger.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to edit trade message %s: %w", handle, err)
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, channelID string, notice dto.TradeNoticeDTO) (string, error) {
	msg, err := n.messenger.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{n.embed(ctx, notice)},
		Components: CreateNoticeComponents(notice),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send trade message: %w", err)
	}

	log.WithFields(log.Fields{
		"trade_id":   notice.TradeID,
		"kind":       notice.Kind,
		"channel_id": channelID,
		"message_id": msg.ID,
	}).Debug("Sent trade message")

	return channelID + ":" + msg.ID, nil
}

// embed renders the notice, naming the proposer on channel listings
func (n *Notifier) embed(ctx context.Context, notice dto.TradeNoticeDTO) *discordgo.MessageEmbed {
	embed := CreateNoticeEmbed(notice)
	if notice.Recipient == 0 && n.names != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name: n.names.DisplayName(ctx, notice.ProposerID),
		}
	}
	return embed
}

func parseHandle(handle string) (string, string, error) {
	channelID, messageID, ok := strings.Cut(handle, ":")
	if !ok || channelID == "" || messageID == "" {
		return "", "", fmt.Errorf("malformed message handle %q", handle)
	}
	return channelID, messageID, nil
}
