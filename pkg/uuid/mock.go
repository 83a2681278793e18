// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package uuid

import (
	"fmt"
	"sync"

	stardust "github.com/TELY01-DEV/stardust-my-firstcare-com-sub003"
)

// Prefix represents the prefix used to generate UUID mocks.
const Prefix = "123e4567-e89b-12d3-a456-"

var _ stardust.IDProvider = (*uuidProviderMock)(nil)

type uuidProviderMock struct {
	mu      sync.Mutex
	counter int
}

func (up *uuidProviderMock) ID() (string, error) {
	up.mu.Lock()
	defer up.mu.Unlock()

	up.counter++
	return fmt.Sprintf("%s%012d", Prefix, up.counter), nil
}

// NewMock creates uuid provider mock that generates deterministic,
// sequence-numbered identifiers.
func NewMock() stardust.IDProvider {
	return &uuidProviderMock{}
}
