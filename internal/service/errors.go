package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jewelpos/internal/apierror"
	"jewelpos/internal/repository"
)

// Validation errors. All of them are raised before storage is touched.
var (
	ErrInvalidType          = apierror.Validation("INVALID_TYPE", "ornament type must start with a letter")
	ErrInvalidSequence      = apierror.Validation("INVALID_SEQUENCE", "sequence number must be positive")
	ErrInvalidWeight        = apierror.Validation("INVALID_WEIGHT", "weight must be greater than zero")
	ErrInvalidCostPrice     = apierror.Validation("INVALID_COST_PRICE", "cost price must be greater than zero")
	ErrInvalidPurity        = apierror.Validation("INVALID_PURITY", "purity must be one of 18K, 22K, 24K")
	ErrMissingMerchantCode  = apierror.Validation("MISSING_MERCHANT_CODE", "merchant code is required")
	ErrInvalidCode          = apierror.Validation("INVALID_CODE", "scanned code is empty or unreadable")
	ErrInvalidStatus        = apierror.Validation("INVALID_STATUS", "status must be in_stock or sold")
	ErrEmptyCart            = apierror.Validation("EMPTY_CART", "cart is empty")
	ErrMissingClientName    = apierror.Validation("MISSING_CLIENT_NAME", "client name is required")
	ErrMissingClientPhone   = apierror.Validation("MISSING_CLIENT_PHONE", "client phone is required")
	ErrMissingOrnamentID    = apierror.Validation("MISSING_ORNAMENT_ID", "every cart item needs an ornament ID")
	ErrNegativeAmount       = apierror.Validation("NEGATIVE_AMOUNT", "selling price must not be negative")
	ErrDuplicateItem        = apierror.Validation("DUPLICATE_ITEM", "ornament appears more than once in the cart")
	ErrInvalidPaymentMethod = apierror.Validation("INVALID_PAYMENT_METHOD", "payment method must be one of cash, card, upi, bank")
	ErrTotalsMismatch       = apierror.Validation("TOTALS_MISMATCH", "submitted totals do not match the cart")
	ErrInvalidBillID        = apierror.Validation("INVALID_BILL_ID", "bill ID must be a number or a bill number like BILL-000001")
	ErrInvalidClientID      = apierror.Validation("INVALID_CLIENT_ID", "client ID must be a positive number")
	ErrMissingMerchantName  = apierror.Validation("MISSING_MERCHANT_NAME", "merchant name is required")
	ErrMissingMerchantPhone = apierror.Validation("MISSING_MERCHANT_PHONE", "merchant phone is required")
	ErrAmountPrecision      = apierror.Validation("INVALID_PRECISION", "amounts allow at most 2 decimal places, weights at most 3")
	ErrAmountTooLarge       = apierror.Validation("AMOUNT_TOO_LARGE", "amount exceeds the largest storable value")
)

var (
	ErrOrnamentNotFound = apierror.NotFound("ORNAMENT_NOT_FOUND", "ornament not found")
	ErrBillNotFound     = apierror.NotFound("BILL_NOT_FOUND", "bill not found")
	ErrMerchantNotFound = apierror.NotFound("MERCHANT_NOT_FOUND", "merchant not found")
	ErrClientNotFound   = apierror.NotFound("CLIENT_NOT_FOUND", "client not found")

	ErrAlreadySold       = apierror.Conflict("ORNAMENT_ALREADY_SOLD", "ornament already sold")
	ErrDuplicateMerchant = apierror.Conflict("DUPLICATE_MERCHANT", "merchant code or phone number already exists")
	ErrDuplicateClient   = apierror.Conflict("DUPLICATE_CLIENT", "a client with this phone number already exists")
	ErrIDAllocation      = apierror.Conflict("ID_ALLOCATION_FAILED", "could not allocate a unique ornament ID, please retry")

	ErrStorageTimeout     = apierror.Unavailable("STORAGE_TIMEOUT", "storage did not respond in time, please retry")
	ErrStorageUnavailable = apierror.Unavailable("STORAGE_UNAVAILABLE", "storage is unavailable, please retry")
)

// withStorageTimeout bounds every storage round trip of one operation.
func withStorageTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// storageError classifies an error coming back from a repository. Domain
// errors pass through; timeouts and connection failures become retryable
// Unavailable errors; anything else is wrapped with op for the logs.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apierror.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStorageTimeout.Wrap(ErrStorageTimeout.Message, fmt.Errorf("%s: %w", op, err))
	}
	if repository.IsUnavailable(err) {
		return ErrStorageUnavailable.Wrap(ErrStorageUnavailable.Message, fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// errorCode returns the domain code of err, or "INTERNAL".
func errorCode(err error) string {
	var ae *apierror.Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return "INTERNAL"
}
