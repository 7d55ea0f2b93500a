package fields

import (
	"fmt"
	"math"

	"finmodel/pkg/models"
)

// ValidateAllFields checks every period against the registry and returns one
// ValidationError per period that has problems. An empty result means the
// input is valid. The function is pure: it never mutates the input, and it
// must run before derivation (the engine assumes validated input).
func ValidateAllFields(periods []models.PeriodInput) []models.ValidationError {
	var errs []models.ValidationError

	for i, period := range periods {
		fieldErrs := make(map[string]string)

		for _, def := range Definitions() {
			value := period.Lookup(def.Key)

			// Required fields must be present and non-nil, except where the
			// firstPeriodOnly rule makes them meaningless for this period.
			if def.Category == DriverRequired && value == nil {
				if !(def.FirstPeriodOnly && i > 0) {
					fieldErrs[def.Key] = fmt.Sprintf("%s is required", def.Label)
				}
				continue
			}

			if value != nil && (math.IsNaN(*value) || math.IsInf(*value, 0)) {
				fieldErrs[def.Key] = fmt.Sprintf("%s must be a finite number", def.Label)
				continue
			}

			if def.Validate != nil {
				if msg := def.Validate(value, period, periods, i); msg != "" {
					fieldErrs[def.Key] = msg
				}
			}
		}

		// Unknown keys are rejected rather than silently ignored so that a
		// misspelled override never slips through as a no-op.
		for key := range period {
			if _, ok := Lookup(key); !ok {
				fieldErrs[key] = "unknown field"
			}
		}

		if len(fieldErrs) > 0 {
			errs = append(errs, models.ValidationError{Period: i + 1, Fields: fieldErrs})
		}
	}

	return errs
}
