// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package experience

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// IDPrefix prefixes every generated record id
const IDPrefix = "exp_"

// ErrInvalidRecord is returned (wrapped) for any record that fails validation
var ErrInvalidRecord = errors.New("invalid learning experience")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their wire names so messages read as JSON paths
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		_, err := ParseTimestamp(fl.Field().String(), time.UTC)
		return err == nil
	})

	return v
}

// ValidationError lists every field problem found in one record
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidRecord)
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRecord
}

// Validate checks every required field and value range on the record
func (e *LearningExperience) Validate() error {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate record: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return &ValidationError{Problems: problems}
}

// describe renders one validator failure as "<json.path> <reason>"
func describe(fe validator.FieldError) string {
	path := fe.Namespace()
	// Drop the root struct name
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "latitude":
		return path + " must be between -90 and 90"
	case "longitude":
		return path + " must be between -180 and 180"
	case "iso8601":
		return path + " must be an ISO-8601 timestamp"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}

// Option customizes a record built with New
type Option func(*LearningExperience)

// WithID sets an explicit record id
func WithID(id string) Option {
	return func(e *LearningExperience) { e.ID = id }
}

// WithTimestamp sets the record timestamp
func WithTimestamp(t time.Time) Option {
	return func(e *LearningExperience) { e.Timestamp = t.Format(time.RFC3339) }
}

// WithPrivacy sets the privacy level
func WithPrivacy(level PrivacyLevel, shareableWith ...string) Option {
	return func(e *LearningExperience) {
		e.Privacy = &Privacy{Level: level, ShareableWith: shareableWith}
	}
}

// WithTags attaches free-form tags
func WithTags(tags ...string) Option {
	return func(e *LearningExperience) { e.Tags = tags }
}

// New builds a validated record, generating id, timestamp and version
func New(learner Learner, ctx Context, data ExperienceData, opts ...Option) (*LearningExperience, error) {
	e := &LearningExperience{
		ID:             NewID(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Version:        CurrentVersion,
		Learner:        learner,
		Context:        ctx,
		ExperienceData: data,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewID generates an opaque record id
func NewID() string {
	return IDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
