package services

import (
	"errors"
	"fmt"
)

// Code classifies a rejected operation.
type Code string

const (
	CodeInvalidArgument    Code = "invalid_argument"
	CodeFailedPrecondition Code = "failed_precondition"
	CodeNotFound           Code = "not_found"
	CodeUnauthenticated    Code = "unauthenticated"
	CodeInternal           Code = "internal"
)

// User-facing rejection messages.
const (
	ErrMsgItemIDName       = "ID and Name are required."
	ErrMsgItemIDFormat     = "ID must be at most 48 plain ASCII characters."
	ErrMsgItemSection      = "Please choose a menu section."
	ErrMsgHotPrice         = "Please provide a Hot price when variant pricing is enabled."
	ErrMsgBasePrice        = "Please provide a base price."
	ErrMsgValidPrice       = "Please provide a valid price."
	ErrMsgGallery          = "Please provide at least a title and an image."
	ErrMsgPromotion        = "Please complete all promotion fields, including an image."
	ErrMsgExpense          = "Please provide a description and an amount greater than zero."
	ErrMsgExpenseCategory  = "Expense category must be materials or operations."
	ErrMsgLogin            = "Incorrect password. Please try again."
	ErrMsgEmptyCart        = "Your order is empty."
	ErrMsgServiceMode      = "Please choose dine-in or take-out."
	ErrMsgPaymentMethod    = "Please choose a payment method."
	ErrMsgQuantity         = "Quantity must be at least 1."
	ErrMsgInvalidVoucher   = "Invalid voucher code"
	ErrMsgImportMalformed  = "Unable to import configuration. Please ensure you selected the exported JSON file."
	ErrMsgImportIncomplete = "Configuration file is missing required sections."
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = &ValidationError{Code: CodeUnauthenticated, Message: ErrMsgLogin}
	ErrEmptyCart       = &ValidationError{Code: CodeFailedPrecondition, Message: ErrMsgEmptyCart}
)

// ValidationError is a rejection whose Message can be shown to the user
// as is. The operation that returned it made no changes.
type ValidationError struct {
	Code    Code
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalidArgument(msg string) error {
	return &ValidationError{Code: CodeInvalidArgument, Message: msg}
}

func invalidArgumentf(format string, args ...any) error {
	return &ValidationError{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode maps any error returned by this package to a Code.
func ErrorCode(err error) Code {
	var ve *ValidationError
	var vo *VoucherError
	var ie *ImportError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Code
	case errors.As(err, &vo), errors.As(err, &ie):
		return CodeInvalidArgument
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}
