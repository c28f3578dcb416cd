package entities

import "time"

// User is a Discord member known to the bot.
// InTrade is the trade lock: set while the user is a party to a pending or active trade.
type User struct {
	DiscordID int64     `db:"discord_id"`
	Username  string    `db:"username"`
	InTrade   bool      `db:"in_trade"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
