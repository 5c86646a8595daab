package validation

import (
	"math"
	"reflect"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

var referencePattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)

// New returns a configured validator. supportedCurrencies is matched
// case-insensitively; rules that tags cannot express are registered as
// struct-level validation on CreatePaymentRequest.
func New(supportedCurrencies []string) *validatorv10.Validate {
	supported := make(map[string]struct{}, len(supportedCurrencies))
	for _, c := range supportedCurrencies {
		supported[strings.ToUpper(c)] = struct{}{}
	}

	v := validatorv10.New()

	// report json field names so error maps match the wire format
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(func(sl validatorv10.StructLevel) {
		req := sl.Current().Interface().(CreatePaymentRequest)

		if !hasAtMostTwoDecimals(req.Amount) {
			sl.ReportError(req.Amount, "amount", "Amount", "two_decimals", "")
		}
		if len(req.Currency) == 3 {
			if _, ok := supported[strings.ToUpper(req.Currency)]; !ok {
				sl.ReportError(req.Currency, "currency", "Currency", "currency_supported", "")
			}
		}
		if req.ReferenceID != "" && !referencePattern.MatchString(req.ReferenceID) {
			sl.ReportError(req.ReferenceID, "referenceId", "ReferenceID", "reference_charset", "")
		}
	}, CreatePaymentRequest{})

	return v
}

// hasAtMostTwoDecimals checks the amount is representable in whole cents.
func hasAtMostTwoDecimals(amount float64) bool {
	cents := amount * 100
	return math.Abs(cents-math.Round(cents)) < 1e-9
}
