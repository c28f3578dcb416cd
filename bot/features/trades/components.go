package trades

import (
	"fmt"
	"strconv"
	"strings"

	"cardswap/application/dto"
	"cardswap/bot/common"
	"cardswap/domain/entities"
	"cardswap/domain/errs"

	"github.com/bwmarrin/discordgo"
)

// Custom IDs are "trade:<action>:<tradeID>"
const (
	CustomIDPrefix = "trade:"

	ActionOffer      = "offer"
	ActionConfirm    = "confirm"
	ActionCancel     = "cancel"
	ActionOfferModal = "offer-modal"

	inputExpansion  = "expansion"
	inputCardNumber = "card_number"
)

var knownActions = map[string]bool{
	ActionOffer:      true,
	ActionConfirm:    true,
	ActionCancel:     true,
	ActionOfferModal: true,
}

// CustomID builds the custom ID of a trade button or modal
func CustomID(action string, tradeID int64) string {
	return fmt.Sprintf("%s%s:%d", CustomIDPrefix, action, tradeID)
}

// ParseCustomID splits a trade custom ID into its action and trade ID
func ParseCustomID(customID string) (string, int64, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0]+":" != CustomIDPrefix {
		return "", 0, errs.BadRequest("malformed custom id %q", customID)
	}

	action := parts[1]
	if !knownActions[action] {
		return "", 0, errs.BadRequest("unknown trade action %q", action)
	}

	tradeID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || tradeID <= 0 {
		return "", 0, errs.BadRequest("invalid trade id %q", parts[2])
	}
	return action, tradeID, nil
}

// ParseCardInput validates raw expansion and card number input
func ParseCardInput(expansion, cardNumber string) (entities.CardRef, error) {
	card, err := entities.NewCardRef(expansion, cardNumber)
	if err != nil {
		return entities.CardRef{}, common.NewBadRequestError(fmt.Sprintf("Invalid card: %v.", err), "invalid card input")
	}
	return card, nil
}

// CreateNoticeComponents returns the buttons that belong on a trade message
func CreateNoticeComponents(notice dto.TradeNoticeDTO) []discordgo.MessageComponent {
	switch notice.Kind {
	case dto.NoticeOfferOpen:
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Make an offer",
						Style:    discordgo.PrimaryButton,
						CustomID: CustomID(ActionOffer, notice.TradeID),
					},
				},
			},
		}

	case dto.NoticeProposed:
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{cancelButton(notice.TradeID)},
			},
		}

	case dto.NoticeMatched, dto.NoticeConfirmed:
		confirmed := notice.HasConfirmed(notice.Recipient)
		label := "Confirm"
		if confirmed {
			label = "Confirmed"
		}
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    label,
						Style:    discordgo.SuccessButton,
						CustomID: CustomID(ActionConfirm, notice.TradeID),
						Disabled: confirmed,
					},
					cancelButton(notice.TradeID),
				},
			},
		}
	}

	// Terminal messages keep no buttons
	return []discordgo.MessageComponent{}
}

func cancelButton(tradeID int64) discordgo.Button {
	return discordgo.Button{
		Label:    "Cancel",
		Style:    discordgo.DangerButton,
		CustomID: CustomID(ActionCancel, tradeID),
	}
}

// CreateOfferModal asks an acceptor which card they give in return
func CreateOfferModal(tradeID int64) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: CustomID(ActionOfferModal, tradeID),
		Title:    fmt.Sprintf("Offer a card for trade #%d", tradeID),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    inputExpansion,
						Label:       "Expansion",
						Style:       discordgo.TextInputShort,
						Placeholder: "Genesis",
						Required:    true,
						MinLength:   1,
						MaxLength:   64,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    inputCardNumber,
						Label:       "Card number",
						Style:       discordgo.TextInputShort,
						Placeholder: "9",
						Required:    true,
						MinLength:   1,
						MaxLength:   entities.MaxCardNumberLength,
					},
				},
			},
		},
	}
}

// ParseOfferModal extracts the trade ID and offered card from a submitted offer modal
func ParseOfferModal(data discordgo.ModalSubmitInteractionData) (int64, entities.CardRef, error) {
	action, tradeID, err := ParseCustomID(data.CustomID)
	if err != nil {
		return 0, entities.CardRef{}, err
	}
	if action != ActionOfferModal {
		return 0, entities.CardRef{}, errs.BadRequest("unexpected modal action %q", action)
	}

	var expansion, cardNumber string
	for _, comp := range data.Components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			textInput, ok := inner.(*discordgo.TextInput)
			if !ok {
				continue
			}
			switch textInput.CustomID {
			case inputExpansion:
				expansion = textInput.Value
			case inputCardNumber:
				cardNumber = textInput.Value
			}
		}
	}

	card, err := ParseCardInput(expansion, cardNumber)
	if err != nil {
		return 0, entities.CardRef{}, err
	}
	return tradeID, card, nil
}
