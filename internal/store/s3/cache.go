// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"github.com/catctl/catctl/internal/cacheutil"
	"github.com/catctl/catctl/internal/config"
)

// units returns the local cache of this store's snapshot units, keyed by
// bucket and prefix. It is nil when caching is off.
func (st *Store) units() *cacheutil.Units {
	return cacheutil.Open("s3", st.Bucket, st.Prefix)
}

// PurgeCache drops units not used in the last cache.clean hours.
func PurgeCache() error {
	cleanHours, _ := config.GetInt("cache.clean", 0)
	return cacheutil.Purge(cleanHours)
}
