package bizerror

import (
	"approvalflow/common"
	"approvalflow/domain"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

var statusMappings = []struct {
	Err     error
	Status  int
	Code    string
	Message string
}{
	{ErrUnauthenticated, http.StatusUnauthorized, "common.unauthenticated", "unauthenticated"},
	{ErrForbidden, http.StatusForbidden, "security.forbidden", "access forbidden"},
	{ErrInvalidPassword, http.StatusBadRequest, "account.invalid_password", "invalid password"},
	{ErrNotCurrentApprover, http.StatusForbidden, "approval.not_current_approver", "not the expected approver of the current level"},
	{ErrAlreadyCompleted, http.StatusConflict, "approval.already_completed", "approval request already completed"},
	{ErrConcurrentDecision, http.StatusConflict, "approval.concurrent_decision", "another decision has been recorded concurrently"},
	{ErrEmptyChain, http.StatusBadRequest, "chain.empty_levels", "approval chain must contain at least one level"},
	{ErrReasonRequired, http.StatusBadRequest, "approval.reason_required", "rejection reason is required"},
	{ErrDuplicateLevelOrder, http.StatusBadRequest, "chain.duplicate_level_order", "duplicate level order in approval chain"},
	{ErrUnknownEntityType, http.StatusBadRequest, "approval.unknown_entity_type", "unknown entity type"},
	{ErrUserNotFound, http.StatusNotFound, "account.user_not_found", "user not found"},
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body)
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	for _, m := range statusMappings {
		if errors.Is(genericErr, m.Err) {
			c.JSON(m.Status, &common.ErrorBody{Code: m.Code, Message: m.Message})
			c.Abort()
			return
		}
	}

	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, &common.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &common.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
