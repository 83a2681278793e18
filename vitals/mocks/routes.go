// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
)

var _ vitals.RouteMapRepository = (*routeMapMock)(nil)

type routeMapMock struct {
	mu     sync.Mutex
	routes map[string]string
}

// NewRouteMap returns mock route-map instance.
func NewRouteMap() vitals.RouteMapRepository {
	return &routeMapMock{
		routes: make(map[string]string),
	}
}

func (rmm *routeMapMock) Save(_ context.Context, key, patientID string) error {
	rmm.mu.Lock()
	defer rmm.mu.Unlock()

	rmm.routes[key] = patientID
	return nil
}

func (rmm *routeMapMock) Get(_ context.Context, key string) (string, error) {
	rmm.mu.Lock()
	defer rmm.mu.Unlock()

	id, ok := rmm.routes[key]
	if !ok {
		return "", errors.ErrNotFound
	}

	return id, nil
}

func (rmm *routeMapMock) Remove(_ context.Context, key string) error {
	rmm.mu.Lock()
	defer rmm.mu.Unlock()

	delete(rmm.routes, key)
	return nil
}
