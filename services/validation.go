package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"skillboard/backend/models"
)

var errInvalidInput = errors.New("invalid input")

// custom validation tags
const notBlankTag = "notblank"

// Validator checks record payloads against their schema and request bodies
// against their struct tags, reporting English messages per field.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator instantiates the validator for use.
func NewValidator() *Validator {
	validate := validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterTranslation(notBlankTag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " cannot be blank"
		},
	)

	return &Validator{validate: validate, translator: translator}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// Struct validates a request body using its validate tags.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{Field: fe.Field(), Error: fe.Translate(v.translator)})
	}
	return NewValidationError(errInvalidInput, fields...)
}

// Record normalizes a payload against schema and applies each field's rules.
func (v *Validator) Record(schema *models.Schema, payload models.Record) (models.Record, error) {
	rec, fields := schema.Normalize(payload)

	invalid := make(map[string]bool, len(fields))
	for _, fe := range fields {
		invalid[fe.Field] = true
	}

	for _, f := range schema.Fields {
		if f.Rules == "" || invalid[f.Name] {
			continue
		}
		value, ok := rec.Lookup(f.Name)
		if !ok {
			continue
		}
		if msg := v.check(f.Name, value, f.Rules); msg != "" {
			fields = append(fields, models.FieldError{Field: f.Name, Error: msg})
		}
	}

	if len(fields) > 0 {
		return nil, NewValidationError(fmt.Errorf("invalid %s record", schema.Resource), fields...)
	}
	return rec, nil
}

// check applies validator tags to a single value and returns the first message.
func (v *Validator) check(name string, value interface{}, rules string) string {
	err := v.validate.Var(value, rules)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	// Var has no field name, so the translation starts with the message itself.
	return name + " " + strings.TrimSpace(verrs[0].Translate(v.translator))
}

// Criteria checks that every filter key is a filterable field of schema.
func (v *Validator) Criteria(schema *models.Schema, c models.Criteria) error {
	var fields []models.FieldError
	for key := range c.Filters {
		f, ok := schema.Field(key)
		if !ok || !f.Filterable {
			fields = append(fields, models.FieldError{
				Field: "filters." + key,
				Error: fmt.Sprintf("%s is not a filterable field of %s", key, schema.Resource),
			})
		}
	}
	if len(fields) > 0 {
		sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
		return NewValidationError(errors.New("invalid criteria"), fields...)
	}
	return nil
}

// GroupBy checks that field is a declared field of schema.
func (v *Validator) GroupBy(schema *models.Schema, field string) error {
	if field == models.FieldID {
		return nil
	}
	if _, ok := schema.Field(field); !ok {
		return NewValidationError(errors.New("invalid grouping"), models.FieldError{
			Field: "groupBy",
			Error: fmt.Sprintf("%s is not a field of %s", field, schema.Resource),
		})
	}
	return nil
}
