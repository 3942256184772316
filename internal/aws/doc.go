// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws builds the S3 client behind the s3 snapshot store from the
// --profile, --region and --endpoint flags, falling back to the SDK config
// chain. An endpoint override switches to path-style addressing for MinIO and
// other S3-compatible servers.
package aws
