package service

// Error is a typed domain failure returned (never panicked) by the service
// and mapped 1:1 to an HTTP status at the boundary.
type Error struct {
	Code              string
	Title             string
	Detail            string
	Status            int
	RetryAfterSeconds int
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Detail
}

// RFCType returns the RFC 7231 section URI for the error's status category.
func (e *Error) RFCType() string {
	switch e.Status {
	case 400, 422:
		return "https://tools.ietf.org/html/rfc7231#section-6.5.1"
	case 404:
		return "https://tools.ietf.org/html/rfc7231#section-6.5.4"
	case 503:
		return "https://tools.ietf.org/html/rfc7231#section-6.6.4"
	default:
		return "https://tools.ietf.org/html/rfc7231#section-6.6.1"
	}
}

// PaymentRejected is the processor's definitive refusal of the payment.
func PaymentRejected(reason string) *Error {
	if reason == "" {
		reason = "Payment was rejected."
	}
	return &Error{
		Code:   "payment.rejected",
		Title:  "Payment Rejected",
		Detail: reason,
		Status: 422,
	}
}

// ErrServiceUnavailable covers transient processor failures and an open breaker.
var ErrServiceUnavailable = &Error{
	Code:              "service.unavailable",
	Title:             "Service Unavailable",
	Detail:            "Payment processing is temporarily unavailable. Please retry later.",
	Status:            503,
	RetryAfterSeconds: 30,
}

// ErrNotFound is returned for unknown payment ids and references.
var ErrNotFound = &Error{
	Code:   "resource.not_found",
	Title:  "Not Found",
	Detail: "The requested resource was not found.",
	Status: 404,
}
