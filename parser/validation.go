package parser

import (
	"reflect"
	"regexp"

	"gopkg.in/go-playground/validator.v9"
)

var calendarDateRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("calendar_date", calendarDate)
	return v
}

// calendarDate accepts YYYY-MM-DD strings.
func calendarDate(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return calendarDateRe.MatchString(fl.Field().String())
}
