package inventory

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/upao-inso/restaurant-pos/internal/validation"
)

// ValidationResult collects every problem found in an input so the caller can
// show them all at once.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (r *ValidationResult) add(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r ValidationResult) done() ValidationResult {
	r.Valid = len(r.Errors) == 0
	if r.Errors == nil {
		r.Errors = []string{}
	}
	return r
}

// ItemInput is the editable part of an inventory item.
type ItemInput struct {
	Name          string   `json:"name" validate:"required,max=100"`
	Quantity      float64  `json:"quantity" validate:"gte=0"`
	Type          ItemType `json:"type" validate:"required,item_type"`
	UnitOfMeasure Unit     `json:"unit_of_measure" validate:"required,unit"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validation.New()
	_ = v.RegisterValidation("item_type", func(fl validator.FieldLevel) bool {
		return ItemType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("unit", func(fl validator.FieldLevel) bool {
		return Unit(fl.Field().String()).Valid()
	})
	return v
}

var tagMessages = map[string]string{
	"item_type": "must be one of " + joinTypes(ItemTypes),
	"unit":      "must be one of " + joinUnits(AllUnits),
}

func fieldMessages(err error) []string {
	return validation.Messages(err, tagMessages)
}

func joinTypes(ts []ItemType) string {
	s := make([]string, len(ts))
	for i, t := range ts {
		s[i] = string(t)
	}
	return strings.Join(s, ", ")
}

func joinUnits(us []Unit) string {
	s := make([]string, len(us))
	for i, u := range us {
		s[i] = string(u)
	}
	return strings.Join(s, ", ")
}

func isWhole(v float64) bool {
	return v == math.Trunc(v)
}

// ValidateInventoryItem checks field rules, the type/unit pairing and the
// whole-number rule of the count unit. It never fails; problems are returned
// as human-readable messages.
func ValidateInventoryItem(in ItemInput) ValidationResult {
	var res ValidationResult
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		for _, msg := range fieldMessages(err) {
			res.add(msg)
		}
	}
	if in.Type.Valid() && in.UnitOfMeasure.Valid() && !IsUnitAllowed(in.Type, in.UnitOfMeasure) {
		res.add(fmt.Sprintf("%s items must be measured in %s", in.Type, joinUnits(AllowedUnits(in.Type))))
	}
	if in.UnitOfMeasure.IsCount() && !isWhole(in.Quantity) {
		res.add(fmt.Sprintf("quantity in %s must be a whole number", in.UnitOfMeasure))
	}
	return res.done()
}
