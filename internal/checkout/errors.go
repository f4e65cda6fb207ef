package checkout

import "errors"

const (
	MsgTokenMissing       = "Authentication token is missing. Please log in again."
	MsgNoCourses          = "No courses selected for purchase"
	MsgUserIncomplete     = "User details are incomplete"
	MsgGatewayLoad        = "Failed to load payment gateway. Please check your internet connection and try again."
	MsgInitFailed         = "Could not initialize payment. Please try again later."
	MsgPaymentGeneric     = "Could not make payment. Please try again later."
	MsgResponseIncomplete = "Payment response is incomplete"
	MsgCancelled          = "Payment cancelled"
	MsgVerifyFailed       = "Payment verification failed"
	MsgVerifyGeneric      = "Could not verify payment. Please contact support."
	MsgPurchased          = "Payment successful! You are now enrolled in the course."

	EnrolledCoursesPath = "/dashboard/enrolled-courses"
)

var (
	ErrInvalidInput  = errors.New("checkout input invalid")
	ErrCancelled     = errors.New("payment cancelled by purchaser")
	ErrPaymentFailed = errors.New("payment failed at gateway")
	ErrRejected      = errors.New("rejected by server")
)

// Error is a failed checkout attempt. Message is safe to show to the
// purchaser; Cause is for logs and errors.Is.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }
