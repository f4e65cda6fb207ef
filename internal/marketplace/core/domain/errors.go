package domain

import "errors"

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrNoCoursesInCategory  = errors.New("no published courses in category")
	ErrCategoryFieldMissing = errors.New("category name or description missing")

	ErrNoCoursesSelected    = errors.New("no courses selected")
	ErrCourseNotFound       = errors.New("course not found")
	ErrAlreadyEnrolled      = errors.New("student already enrolled")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderMismatch        = errors.New("order does not cover the requested courses")
	ErrConfirmationMissing  = errors.New("payment confirmation incomplete")
	ErrInvalidSignature     = errors.New("invalid payment signature")
	ErrConfirmationReplayed = errors.New("payment confirmation already used")
	ErrReceiptFieldMissing  = errors.New("receipt details missing")
	ErrUserNotFound         = errors.New("user not found")
	ErrVerificationNotFound = errors.New("no verification recorded for order")
)
