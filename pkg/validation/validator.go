package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// basicEmailRe accepts the local@domain.tld shape and nothing stricter.
var basicEmailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)

const (
	// MinUsernameLength and MinPasswordLength mirror the "uname" and "pwd" aliases.
	MinUsernameLength = 3
	MinPasswordLength = 5
	// MaxPasswordBytes is the bcrypt input limit; validator's max counts runes, not bytes.
	MaxPasswordBytes = 72
)

var (
	std     *validator.Validate
	stdOnce sync.Once
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}

// Default returns a process-wide validator with the same rules Init installs into Gin.
func Default() *validator.Validate {
	stdOnce.Do(func() {
		std = validator.New(validator.WithRequiredStructEnabled())
		register(std)
	})
	return std
}

// Struct validates s with the default validator and returns field details on failure.
func Struct(s any) map[string]string {
	return ToDetails(Default().Struct(s))
}

func register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
		return basicEmailRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	v.RegisterAlias("pwd", fmt.Sprintf("min=%d,maxbytes=%d", MinPasswordLength, MaxPasswordBytes))
	v.RegisterAlias("uname", fmt.Sprintf("min=%d", MinUsernameLength))
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return map[string]string{"payload": "invalid json"}
	}

	// Validation errors from validator.v10
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

// formatFieldError keys on ActualTag so alias failures report the rule that broke.
func formatFieldError(fe validator.FieldError) string {
	tag := fe.ActualTag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "basicemail":
		return "must be a valid email"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "maxbytes":
		return "must be at most " + param + " bytes long"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
