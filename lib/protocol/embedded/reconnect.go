/*
Copyright 2026 RustConn Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package embedded

import (
	"math/rand"
	"time"
)

// ReconnectPolicy configures the worker's automatic-reconnect behavior
// while in StateReconnecting.
type ReconnectPolicy struct {
	MaxAttempts      int
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	BackoffMultiplier float64
	Jitter           bool
}

// DefaultReconnectPolicy returns conservative defaults.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		MaxAttempts:       5,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            false,
	}
}

// Delay computes the backoff delay for the given zero-based attempt
// number, ceilinged at MaxDelay. When Jitter is enabled a uniform random
// factor in [0.5, 1.0] is applied to the ceilinged value, matching the
// "jitter optional" clause.
func (p ReconnectPolicy) Delay(attempt int) time.Duration {
	d := float64(p.InitialDelay)
	for i := 0; i < attempt; i++ {
		d *= p.BackoffMultiplier
		if d > float64(p.MaxDelay) {
			d = float64(p.MaxDelay)
			break
		}
	}
	delay := time.Duration(d)
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.Jitter {
		factor := 0.5 + rand.Float64()*0.5
		delay = time.Duration(float64(delay) * factor)
	}
	return delay
}

// ShouldRetry reports whether another reconnect attempt should be made.
func (p ReconnectPolicy) ShouldRetry(attempt int) bool {
	return attempt < p.MaxAttempts
}
