// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package s3 implements the snapshot store on an S3 bucket. Object keys mirror
// the local layout beneath an optional prefix:
//
//	<prefix>/<stamp>/raw/<unit>.json
//	<prefix>/<stamp>/delta/{csv,json}/...
//
// Units are read through the on-disk cache in internal/cacheutil since a
// published snapshot never changes.
package s3
