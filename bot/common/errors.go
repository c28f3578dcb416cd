package common

import (
	"errors"
	"fmt"
	"strings"

	"cardswap/domain/errs"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// GenericErrorMessage is shown for anything that is not a known rejection
const GenericErrorMessage = "Something went wrong. Please try again later."

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Ephemeral   bool   // Whether the error message should be ephemeral
	Err         error  // Underlying error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: GenericErrorMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

// NewBadRequestError rejects malformed user input with a specific message
func NewBadRequestError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         errs.ErrBadRequest,
	}
}

var rejectionMessages = []struct {
	err     error
	message string
}{
	{errs.ErrAlreadyInTrade, "You are already in a trade. Finish or cancel it first."},
	{errs.ErrNotMissing, "That card is not on your missing list. Add it with `/missing add` first."},
	{errs.ErrAcceptorMissingCard, "You can't offer a card that is on your own missing list."},
	{errs.ErrProposerMissingOfferedCard, "The proposer is missing that card too. Offer a card they already have."},
	{errs.ErrNoActiveProposal, "There is no open proposal to answer."},
	{errs.ErrSelfTrade, "You can't trade with yourself."},
	{errs.ErrUnknownTrade, "That trade doesn't exist or is no longer open."},
	{errs.ErrNotAParty, "You are not part of that trade."},
	{errs.ErrUnknownExpansion, "Unknown expansion."},
	{errs.ErrInvalidCardNumber, "That card number isn't valid for this expansion."},
	{errs.ErrBadRequest, "That request couldn't be understood."},
}

// UserMessageFor maps a domain error to the message shown to the user.
// The second result is false for errors that are not user rejections.
func UserMessageFor(err error) (string, bool) {
	var botErr *BotError
	if errors.As(err, &botErr) && (botErr.Err == nil || errs.IsRejection(botErr.Err)) {
		return botErr.UserMessage, true
	}
	for _, r := range rejectionMessages {
		if errors.Is(err, r.err) {
			return r.message, true
		}
	}
	return GenericErrorMessage, false
}

// WithSuggestions appends "did you mean" names to a user message
func WithSuggestions(message string, suggestions []string) string {
	if len(suggestions) == 0 {
		return message
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = fmt.Sprintf("**%s**", s)
	}
	return fmt.Sprintf("%s Did you mean %s?", message, strings.Join(quoted, ", "))
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError logs err and tells the user what went wrong.
// Rejections are logged at info, anything else at error with the generic message shown.
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	message, rejection := UserMessageFor(err)

	fields := log.Fields{
		"user_id":     InteractionUserID(i),
		"interaction": InteractionName(i),
		"error":       err.Error(),
	}
	if rejection {
		log.WithFields(fields).Info("Request rejected")
	} else {
		log.WithFields(fields).Error("Unexpected error handling interaction")
	}

	if deferred {
		FollowUpWithError(s, i, message)
	} else {
		RespondWithError(s, i, message)
	}
}
