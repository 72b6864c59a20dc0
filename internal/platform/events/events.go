// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package events publishes user-group mutation notifications.

Events are fire-and-forget: they are emitted after the owning transaction has
committed, and a publish failure never undoes the mutation. Consumers subscribe
to the configured Redis channel and receive one JSON document per event.
*/
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Type identifies what happened.
type Type string

const (
	UserGroupCreated     Type = "user_group.created"
	UserGroupUpdated     Type = "user_group.updated"
	UserGroupDeleted     Type = "user_group.deleted"
	ContextGroupsDeleted Type = "user_group.context_deleted"
	UserAssigned         Type = "user_group.user_assigned"
	UserRemoved          Type = "user_group.user_removed"
	StageAssigned        Type = "user_group.stage_assigned"
	StageRemoved         Type = "user_group.stage_removed"
	LocaleInstalled      Type = "user_group.locale_installed"
	DefinitionsInstalled Type = "user_group.definitions_installed"
)

// Event is the payload written to the bus.
type Event struct {
	Type        Type      `json:"type"`
	ContextID   *int64    `json:"context_id,omitempty"`
	UserGroupID int64     `json:"user_group_id,omitempty"`
	UserID      int64     `json:"user_id,omitempty"`
	StageID     int       `json:"stage_id,omitempty"`
	Locale      string    `json:"locale,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher hands events to a bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish implements [Publisher].
func (Nop) Publish(context.Context, Event) error { return nil }

// RedisPublisher publishes events as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	now     func() time.Time
}

// NewRedisPublisher binds a publisher to channel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, now: time.Now}
}

// Publish stamps OccurredAt when unset and sends the event.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", event.Type, err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("events: publish %s: %w", event.Type, err)
	}
	return nil
}

// Observer receives the outcome of each publish attempt.
type Observer interface {
	ObserveEvent(eventType string, err error)
}

type observed struct {
	next     Publisher
	observer Observer
}

// Observed wraps next so every publish is reported to observer.
func Observed(next Publisher, observer Observer) Publisher {
	return &observed{next: next, observer: observer}
}

func (o *observed) Publish(ctx context.Context, event Event) error {
	err := o.next.Publish(ctx, event)
	o.observer.ObserveEvent(string(event.Type), err)
	return err
}
