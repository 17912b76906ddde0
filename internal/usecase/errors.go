package usecase

import (
	"errors"

	"github.com/xavierca1/medtour-leads/internal/entity"
	"github.com/xavierca1/medtour-leads/internal/logger"
)

const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeConflict   = "CONFLICT"
	CodeStorage    = "STORAGE_ERROR"
	CodeSideEffect = "EXTERNAL_SIDE_EFFECT_ERROR"
)

// DomainError is a caller mistake: unknown lead, bad input, stale expected
// status. Never retried.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError hides a storage failure from the caller. The wrapped error
// is logged, never rendered.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// SideEffectError is a failed notification. It rides along with a
// successful result as a warning and never undoes the status change.
type SideEffectError = entity.ChannelError

// Warning is the rendered form of a SideEffectError.
type Warning struct {
	Code    string `json:"code"`
	Channel string `json:"channel"`
	Message string `json:"message"`
}

func warningFrom(err *SideEffectError) Warning {
	return Warning{Code: CodeSideEffect, Channel: err.Channel, Message: err.Error()}
}

func notFound(msg string) error {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func invalid(msg string, fields ...ValidationError) error {
	return &DomainError{Code: CodeValidation, Message: msg, Fields: fields}
}

// translateRepoError maps repository sentinels onto the domain taxonomy and
// turns anything else into a logged STORAGE_ERROR.
func translateRepoError(op string, err error) error {
	switch {
	case errors.Is(err, entity.ErrLeadNotFound):
		return notFound("lead not found")
	case errors.Is(err, entity.ErrStatusNotFound):
		return invalid("unknown lead_status_id", ValidationError{Field: "lead_status_id", Message: "does not exist"})
	case errors.Is(err, entity.ErrStatusConflict):
		return &DomainError{Code: CodeConflict, Message: "lead status was changed by someone else; reload and retry"}
	}

	logger.WithField("op", op).WithError(err).Error("storage failure")
	return &TechnicalError{Code: CodeStorage, Message: "storage failure", Err: err}
}
