package services

import (
	"errors"
	"reflect"
	"strings"

	"elabcrm-backend/models"
	"elabcrm-backend/utils"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})

	enums := map[string][]string{
		"qualification_type":   models.QualificationTypes,
		"package_type":         models.PackageTypes,
		"client_status":        models.ClientStatuses,
		"payment_status":       models.PaymentStatuses,
		"application_type":     models.ApplicationTypes,
		"application_status":   models.ApplicationStatuses,
		"document_status":      models.DocumentStatuses,
		"channel":              models.Channels,
		"communication_status": models.CommunicationStates,
	}
	for tag, allowed := range enums {
		allowed := allowed
		v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return models.OneOf(fl.Field().String(), allowed)
		})
	}

	v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseDate(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return utils.ValidatePhone(fl.Field().String())
	})

	return v
}

// validateInput runs struct tags and converts failures into a ValidationError
// carrying every violation.
func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		ve.Violations = append(ve.Violations, FieldViolation{
			Field: fieldPath(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return ve
}

// fieldPath drops the struct type prefix: "CreateClientInput.qualification.type" -> "qualification.type".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
