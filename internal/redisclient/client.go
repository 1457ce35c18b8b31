package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/limasantoss/marketplace-dash/internal/models"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/append_messages.lua
var appendMessagesScript string

const periodDateLayout = "2006-01-02"

// SessionOptions bounds what is kept per session
type SessionOptions struct {
	TTL         time.Duration
	MaxMessages int
}

type Client struct {
	rdb          *redis.Client
	appendScript *redis.Script
	opts         SessionOptions
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int, opts SessionOptions) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return newClient(rdb, opts), nil
}

func newClient(rdb *redis.Client, opts SessionOptions) *Client {
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Hour
	}
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = 200
	}
	return &Client{
		rdb:          rdb,
		appendScript: redis.NewScript(appendMessagesScript),
		opts:         opts,
	}
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func periodKey(sessionID string) string { return fmt.Sprintf("session:%s:period", sessionID) }
func messagesKey(sessionID string) string { return fmt.Sprintf("session:%s:messages", sessionID) }
func processedKey(eventID string) string { return fmt.Sprintf("processed:%s", eventID) }

// SavePeriod stores the session's selected period and refreshes its TTL
func (c *Client) SavePeriod(ctx context.Context, sessionID string, p models.Period) error {
	key := periodKey(sessionID)

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, encodePeriod(p))
	pipe.Expire(ctx, key, c.opts.TTL)
	pipe.Expire(ctx, messagesKey(sessionID), c.opts.TTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save period: %w", err)
	}
	return nil
}

// LoadPeriod returns the session's selected period. found is false when the
// session has none or it expired.
func (c *Client) LoadPeriod(ctx context.Context, sessionID string) (p models.Period, found bool, err error) {
	fields, err := c.rdb.HGetAll(ctx, periodKey(sessionID)).Result()
	if err != nil {
		return models.Period{}, false, fmt.Errorf("failed to load period: %w", err)
	}
	if len(fields) == 0 {
		return models.Period{}, false, nil
	}
	p, err = decodePeriod(fields)
	if err != nil {
		return models.Period{}, false, err
	}
	return p, true, nil
}

// AppendMessages adds messages to the session transcript, keeping only the
// most recent MaxMessages entries
func (c *Client) AppendMessages(ctx context.Context, sessionID string, messages ...models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(messages)+2)
	args = append(args, c.opts.MaxMessages, int(c.opts.TTL.Seconds()))
	for _, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
		args = append(args, data)
	}

	keys := []string{messagesKey(sessionID), periodKey(sessionID)}
	if err := c.appendScript.Run(ctx, c.rdb, keys, args...).Err(); err != nil {
		return fmt.Errorf("append messages script failed: %w", err)
	}
	return nil
}

// Transcript returns the session messages, oldest first
func (c *Client) Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	raw, err := c.rdb.LRange(ctx, messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	return decodeMessages(raw)
}

// ClearTranscript drops every message of the session, keeping its period
func (c *Client) ClearTranscript(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, messagesKey(sessionID)).Err()
}

// MarkEventProcessed records an event id. It returns false when the event
// was already marked, so consumers can skip redeliveries.
func (c *Client) MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, processedKey(eventID), "1", ttl).Result()
}

// ReleaseEvent forgets an event id so a redelivery is handled again
func (c *Client) ReleaseEvent(ctx context.Context, eventID string) error {
	return c.rdb.Del(ctx, processedKey(eventID)).Err()
}

func encodePeriod(p models.Period) map[string]interface{} {
	return map[string]interface{}{
		"start": p.Start.Format(periodDateLayout),
		"end":   p.End.Format(periodDateLayout),
	}
}

func decodePeriod(fields map[string]string) (models.Period, error) {
	start, err := time.Parse(periodDateLayout, fields["start"])
	if err != nil {
		return models.Period{}, fmt.Errorf("invalid stored period start: %w", err)
	}
	end, err := time.Parse(periodDateLayout, fields["end"])
	if err != nil {
		return models.Period{}, fmt.Errorf("invalid stored period end: %w", err)
	}
	return models.NewPeriod(start, end), nil
}

var errCorruptMessage = errors.New("corrupt transcript entry")

func decodeMessages(raw []string) ([]models.ChatMessage, error) {
	messages := make([]models.ChatMessage, 0, len(raw))
	for _, r := range raw {
		var m models.ChatMessage
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("%w: %v", errCorruptMessage, err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}
