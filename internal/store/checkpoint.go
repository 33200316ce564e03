/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Epoch is the window start used before the first successful sync.
var Epoch = time.Unix(0, 0).UTC()

// ReadCheckpoint returns the stored checkpoint. found is false when no sync
// has completed yet, in which case the returned time is Epoch.
func ReadCheckpoint(ctx context.Context, cache CacheStore) (checkpoint time.Time, found bool, err error) {
	raw, err := cache.Get(ctx, CheckpointKey)
	if errors.Is(err, ErrCacheMiss) {
		return Epoch, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	checkpoint, err = time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt checkpoint %q: %w", string(raw), err)
	}
	return checkpoint.UTC(), true, nil
}

// WriteCheckpoint stores checkpoint under the checkpoint key with no expiry.
func WriteCheckpoint(ctx context.Context, cache CacheStore, checkpoint time.Time) error {
	value := []byte(checkpoint.UTC().Format(time.RFC3339Nano))
	if err := cache.Set(ctx, CheckpointKey, value, NoExpiration); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}
