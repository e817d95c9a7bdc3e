package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidPassword = errors.New("invalid password")

	// approval aggregate failures, kept distinct so the transport layer can
	// tell "wrong person" (403) from "wrong time" (409)
	ErrAlreadyCompleted   = errors.New("approval request already completed")
	ErrNotCurrentApprover = errors.New("not the expected approver of the current level")
	ErrConcurrentDecision = errors.New("concurrent decision on the same approval request")

	ErrEmptyChain          = errors.New("approval chain must contain at least one level")
	ErrReasonRequired      = errors.New("rejection reason is required")
	ErrDuplicateLevelOrder = errors.New("duplicate level order in approval chain")
	ErrUnknownEntityType   = errors.New("unknown entity type")
	ErrUserNotFound        = errors.New("user not found")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
