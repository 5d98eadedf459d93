package transport

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("finite", finite); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("whole", whole); err != nil {
		panic(err)
	}
	return v
}

func finite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
	}
	return true
}

func whole(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return f.Float() == math.Trunc(f.Float())
	}
	return true
}

// messages maps "Field.tag", or just "Field", to the message the client sees
// when that rule fails. Field is the Go struct field name.
type messages map[string]string

func check(v any, msgs messages) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	if m, ok := msgs[fe.StructField()+"."+fe.Tag()]; ok {
		return invalid(m)
	}
	if m, ok := msgs[fe.StructField()]; ok {
		return invalid(m)
	}
	return invalid(fmt.Sprintf("%s is invalid", fe.Field()))
}

// Validator is echo's request validator. Requests with their own Validate
// method normalize and check themselves; anything else is checked by tags.
type Validator struct{}

func (Validator) Validate(i any) error {
	if r, ok := i.(interface{ Validate() error }); ok {
		return r.Validate()
	}
	return check(i, nil)
}

func ValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
