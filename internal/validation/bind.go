package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gin-gonic/gin"
)

// Bind decodes the JSON body into out and validates it. On failure it
// returns a field -> messages map for the structured error body; nil means
// the request is valid.
func Bind(c *gin.Context, out *CreatePaymentRequest, v *validatorv10.Validate) map[string][]string {
	if err := c.ShouldBindJSON(out); err != nil {
		return map[string][]string{"body": {"Request body must be valid JSON."}}
	}
	if err := v.Struct(out); err != nil {
		return errorsToMap(err)
	}
	return nil
}

func errorsToMap(err error) map[string][]string {
	out := map[string][]string{}
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		out["request"] = []string{"Request is invalid."}
		return out
	}
	for _, fe := range ve {
		field := fe.Field()
		out[field] = append(out[field], messageFor(field, fe.Tag()))
	}
	return out
}

func messageFor(field, tag string) string {
	switch field {
	case "amount":
		switch tag {
		case "required", "gt":
			return "Amount must be greater than 0."
		case "lte":
			return "Amount must not exceed 1,000,000."
		case "two_decimals":
			return "Amount must have at most 2 decimal places."
		}
	case "currency":
		switch tag {
		case "required":
			return "Currency is required."
		case "len":
			return "Currency must be 3 characters."
		case "currency_supported":
			return "Currency is not supported."
		}
	case "referenceId":
		switch tag {
		case "required":
			return "ReferenceId is required."
		case "max":
			return "ReferenceId must not exceed 100 characters."
		case "reference_charset":
			return "ReferenceId may only contain alphanumeric characters, hyphens, and underscores."
		}
	}
	return "Value is invalid."
}
