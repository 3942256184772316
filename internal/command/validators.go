// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/catctl/catctl/internal/output"
	"github.com/catctl/catctl/internal/record"
	"github.com/catctl/catctl/internal/report"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// GlobalFlagsValidator checks combinations no single flag validator can.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.Bool("local") && c.String("output") == "raw" {
		return fmt.Errorf("--local has no effect with --output raw")
	}
	return nil
}

func OutputValidator(value any) error {
	return oneOf(value, output.Formats)
}

func StoreValidator(value any) error {
	return oneOf(value, []string{"local", "s3"})
}

func KindValidator(value any) error {
	s, _ := value.(string)
	_, err := record.ParseKind(s)
	if err != nil {
		return fmt.Errorf("must be one of %v", kindNames())
	}
	return nil
}

func FormatValidator(value any) error {
	list, _ := value.([]string)
	for _, f := range list {
		if err := oneOf(f, []string{string(report.JSON), string(report.CSV)}); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(value any, valid []string) error {
	s, _ := value.(string)
	if !slices.Contains(valid, s) {
		return fmt.Errorf("must be one of %v", valid)
	}
	return nil
}
