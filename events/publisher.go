package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
)

const DefaultChannel = "activity-dispositions"

// Disposition is broadcast whenever a record's status or points change.
type Disposition struct {
	RecordID      string        `json:"recordId"`
	OwnerID       string        `json:"ownerId"`
	Status        models.Status `json:"status"`
	AwardedPoints int           `json:"awardedPoints"`
	Source        models.Source `json:"source"`
	At            time.Time     `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, d Disposition) error
	Close() error
}

type nopPublisher struct{}

func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Disposition) error { return nil }
func (nopPublisher) Close() error                               { return nil }

type redisPublisher struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisPublisher connects to addr and verifies the connection with a PING.
func NewRedisPublisher(log *logger.Logger, addr, channel string) (Publisher, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if strings.TrimSpace(channel) == "" {
		channel = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisPublisher{
		log:     log.With("service", "RedisDispositionPublisher"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (p *redisPublisher) Publish(ctx context.Context, d Disposition) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, raw).Err()
}

func (p *redisPublisher) Close() error {
	return p.rdb.Close()
}

// FromRecord builds the event for a record's current state.
func FromRecord(r *models.ActivityLog) Disposition {
	return Disposition{
		RecordID:      r.ID,
		OwnerID:       r.OwnerID,
		Status:        r.Status,
		AwardedPoints: r.AwardedPoints,
		Source:        r.VerificationSource,
		At:            time.Now().UTC(),
	}
}
