package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cardswap/bot/common"

	"github.com/bwmarrin/discordgo"
	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
)

const (
	nameCacheSize = 1024
	nameCacheTTL  = 30 * time.Minute
)

// userFetcher is the part of the Discord session the resolver needs
type userFetcher interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

// RateLimiter manages API call rate limiting
type RateLimiter struct {
	mutex       sync.Mutex
	lastCall    time.Time
	minInterval time.Duration
}

// Wait waits if necessary to respect rate limits
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	elapsed := time.Since(rl.lastCall)
	if elapsed < rl.minInterval {
		waitTime := rl.minInterval - elapsed
		log.Debugf("Rate limiting: waiting %v before next API call", waitTime)

		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	rl.lastCall = time.Now()
	return nil
}

// cachedName is a display name with the time it was fetched
type cachedName struct {
	name      string
	fetchedAt time.Time
}

// UserResolver resolves Discord user IDs to display names
type UserResolver struct {
	session     userFetcher
	cache       *lru.Cache
	cacheTTL    time.Duration
	rateLimiter *RateLimiter
}

// NewUserResolver creates a new user resolver
func NewUserResolver(session userFetcher) *UserResolver {
	cache, _ := lru.New(nameCacheSize)
	return &UserResolver{
		session:  session,
		cache:    cache,
		cacheTTL: nameCacheTTL,
		rateLimiter: &RateLimiter{
			minInterval: 250 * time.Millisecond,
		},
	}
}

// DisplayName returns the user's global display name, falling back to the username.
// Lookup failures yield "user-<id>".
func (r *UserResolver) DisplayName(ctx context.Context, discordID int64) string {
	if cached, ok := r.cache.Get(discordID); ok {
		if c, ok := cached.(cachedName); ok && time.Since(c.fetchedAt) < r.cacheTTL {
			return c.name
		}
	}

	fallback := fmt.Sprintf("user-%d", discordID)
	if err := r.rateLimiter.Wait(ctx); err != nil {
		return fallback
	}

	user, err := r.session.User(common.FormatUserID(discordID), discordgo.WithContext(ctx))
	if err != nil {
		log.WithFields(log.Fields{
			"user_id": discordID,
			"error":   err,
		}).Warn("Failed to resolve user name")
		return fallback
	}

	name := user.GlobalName
	if name == "" {
		name = user.Username
	}
	r.cache.Add(discordID, cachedName{name: name, fetchedAt: time.Now()})
	return name
}
