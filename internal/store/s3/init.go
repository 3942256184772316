// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"fmt"

	awsx "github.com/catctl/catctl/internal/aws"
	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/snapshot"
)

// Option configures a Store.
type Option = func(ctx context.Context, st *Store) error

// New returns an S3 Store for bucket. Without WithClient an S3 client is
// built from the ambient AWS configuration.
func New(ctx context.Context, bucket string, options ...Option) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 store needs a bucket")
	}

	st := &Store{Bucket: bucket}
	for _, opt := range options {
		if err := opt(ctx, st); err != nil {
			return nil, err
		}
	}

	if st.Client == nil {
		if err := WithAWS("", "", "")(ctx, st); err != nil {
			return nil, err
		}
	}
	log.Debugf("s3 store: %s", st)

	return st, nil
}

// WithPrefix places every container beneath prefix.
func WithPrefix(prefix string) Option {
	return func(ctx context.Context, st *Store) error {
		st.Prefix = prefix
		return nil
	}
}

// WithClient uses the given client instead of building one.
func WithClient(client API) Option {
	return func(ctx context.Context, st *Store) error {
		st.Client = client
		return nil
	}
}

// WithAWS builds the client from the AWS config chain, overriding profile,
// region and endpoint when they are non-empty.
func WithAWS(profile, region, endpoint string) Option {
	return func(ctx context.Context, st *Store) error {
		var cfgOpts []awsx.Option
		if profile != "" {
			cfgOpts = append(cfgOpts, awsx.WithProfile(profile))
		}
		if region != "" {
			cfgOpts = append(cfgOpts, awsx.WithRegion(region))
		}
		cfg, err := awsx.LoadAWSConfig(ctx, cfgOpts...)
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		st.Client = awsx.NewS3(cfg, awsx.WithS3Endpoint(endpoint))
		return nil
	}
}

// WithDecoder sets the decoder used for legacy containers.
func WithDecoder(d snapshot.RawDecoder) Option {
	return func(ctx context.Context, st *Store) error {
		st.Decoder = d
		return nil
	}
}
