package dto

import (
	"errors"
	"html"
	"reflect"
	"regexp"
	"strings"

	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// Up to 33 integer and 32 fractional digits, matching the
	// DECIMAL(65,32) wallet columns.
	amountRe       = regexp.MustCompile(`^[0-9]{1,33}(\.[0-9]{1,32})?$`)
	signedAmountRe = regexp.MustCompile(`^-?[0-9]{1,33}(\.[0-9]{1,32})?$`)
	assetSymbolRe  = regexp.MustCompile(`^[A-Z0-9]{1,32}$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("amount", validateAmount)
		_ = v.RegisterValidation("signed_amount", validateSignedAmount)
		_ = v.RegisterValidation("asset_symbol", validateAssetSymbol)
	}
}

// validateAmount accepts non-negative decimal strings within column precision.
func validateAmount(fl validator.FieldLevel) bool {
	return amountRe.MatchString(fl.Field().String())
}

// validateSignedAmount additionally allows a leading minus sign.
func validateSignedAmount(fl validator.FieldLevel) bool {
	return signedAmountRe.MatchString(fl.Field().String())
}

// validateAssetSymbol allows uppercase alphanumeric symbols up to 32 chars.
func validateAssetSymbol(fl validator.FieldLevel) bool {
	return assetSymbolRe.MatchString(fl.Field().String())
}

// BindError converts a gin binding error into an AppError. Missing required
// fields map to MISSING_DATA, everything else to VALIDATION_ERROR.
func BindError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			return apperror.ErrMissingData(field)
		}
		return apperror.ErrValidation("invalid field: " + field)
	}
	return apperror.ErrValidation("malformed request body")
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				s := sanitize(elem.String())
				elem.SetString(s)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
