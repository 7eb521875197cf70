package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/stemsi/siakad-backend/internal/academic"
	"github.com/stemsi/siakad-backend/internal/service"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// customTags are the project-specific binding tags with their messages.
var customTags = []struct {
	tag     string
	fn      govalidator.Func
	message string
}{
	{"nim", func(fl govalidator.FieldLevel) bool {
		return service.ValidNIM(fl.Field().String())
	}, "{0} must be alphanumeric and at least 5 characters"},
	{"academic_year", func(fl govalidator.FieldLevel) bool {
		return academic.ValidAcademicYear(fl.Field().String())
	}, "{0} must look like 2024/2025"},
}

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}

	// Use the JSON tag, or the form tag for multipart payloads, as the field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	for _, ct := range customTags {
		_ = v.RegisterValidation(ct.tag, ct.fn)
		message := ct.message
		_ = v.RegisterTranslation(ct.tag, trans,
			func(u ut.Translator) error { return u.Add(ct.tag, message, true) },
			func(u ut.Translator, fe govalidator.FieldError) string {
				t, _ := u.T(fe.Tag(), fe.Field())
				return t
			})
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans != nil {
				fields[fe.Field()] = fe.Translate(trans)
			} else {
				fields[fe.Field()] = fe.Error()
			}
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the JSON request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindForm binds and validates a multipart or urlencoded form into dst.
func BindForm(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBind(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQuery binds and validates query parameters into dst.
func BindQuery(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
