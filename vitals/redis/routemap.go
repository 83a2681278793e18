// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package redis contains the Redis route-map cache for hot device to
// patient lookups.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"github.com/go-redis/redis/v8"
)

var _ vitals.RouteMapRepository = (*routeMap)(nil)

type routeMap struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRouteMapRepository returns a Redis device route cache. Entries expire
// after the given TTL so registration changes propagate without explicit
// invalidation.
func NewRouteMapRepository(client *redis.Client, prefix string, ttl time.Duration) vitals.RouteMapRepository {
	return &routeMap{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (rm *routeMap) Save(ctx context.Context, key, patientID string) error {
	return rm.client.Set(ctx, rm.key(key), patientID, rm.ttl).Err()
}

func (rm *routeMap) Get(ctx context.Context, key string) (string, error) {
	return rm.client.Get(ctx, rm.key(key)).Result()
}

func (rm *routeMap) Remove(ctx context.Context, key string) error {
	return rm.client.Del(ctx, rm.key(key)).Err()
}

func (rm *routeMap) key(key string) string {
	return fmt.Sprintf("%s:%s", rm.prefix, key)
}
