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

package session

import "time"

// RetryPolicy configures a session's reconnect/respawn retry behavior.
type RetryPolicy struct {
	Enabled           bool
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryPolicy returns conservative defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Enabled:           true,
		MaxAttempts:       5,
		InitialDelay:      time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Delay computes delay(attempt) = min(initial * multiplier^attempt, max).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := float64(p.InitialDelay)
	for i := 0; i < attempt; i++ {
		d *= p.BackoffMultiplier
		if d >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	delay := time.Duration(d)
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// ShouldRetry reports should_retry(attempt) = enabled && attempt < max_attempts.
func (p RetryPolicy) ShouldRetry(attempt int) bool {
	return p.Enabled && attempt < p.MaxAttempts
}
