// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/snapshot"
	"github.com/catctl/catctl/internal/store/local"
	"github.com/catctl/catctl/internal/store/s3"
)

// Config selects and configures a snapshot store.
type Config struct {
	Store    string `validate:"required,oneof=local s3"`
	Root     string `validate:"required_if=Store local"`
	Bucket   string `validate:"required_if=Store s3"`
	Prefix   string
	Region   string
	Endpoint string `validate:"omitempty,url"`
	Profile  string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg and reports every problem in one error.
func (cfg Config) Validate() error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid store config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when store is %s", field, strings.Fields(fe.Param())[1])
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// NewStore returns the Store implementation cfg selects. decoder reads
// legacy containers and may be nil.
func NewStore(ctx context.Context, cfg Config, decoder snapshot.RawDecoder) (snapshot.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debugf("NewStore: %+v", cfg)

	switch cfg.Store {
	case "s3":
		return s3.New(ctx, cfg.Bucket,
			s3.WithPrefix(cfg.Prefix),
			s3.WithAWS(cfg.Profile, cfg.Region, cfg.Endpoint),
			s3.WithDecoder(decoder),
		)
	default:
		return local.New(cfg.Root, local.WithDecoder(decoder))
	}
}
