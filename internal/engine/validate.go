package engine

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// FieldError is one recoverable validation violation, keyed by the JSON
// field path it concerns.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult lists every recoverable violation found in a request.
// Callers decide whether to abort; the engine itself aborts in Analyze.
type ValidationResult struct {
	OK     bool         `json:"ok"`
	Errors []FieldError `json:"errors,omitempty"`
}

// structuralTags are validator tags whose violation means the request is
// not structurally usable at all. These short-circuit as fatal errors;
// every other tag produces a recoverable FieldError.
var structuralTags = map[string]bool{
	"required": true,
	"oneof":    true,
}

// Validator enforces the input invariants before any computation runs.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewValidator builds a validator with english translations and JSON tag
// names, so violation messages reference the wire field names.
func NewValidator() *Validator {
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	trans, _ := uni.GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})
	_ = entrans.RegisterDefaultTranslations(v, trans)

	return &Validator{validate: v, trans: trans}
}

// Validate checks req against the structural schema and the cross-field
// invariants. Structural violations (missing required fields, unknown
// enums) return a fatal error wrapping ErrStructuralValidation; all other
// violations are collected into the returned ValidationResult.
func (v *Validator) Validate(req *AnalysisRequest) (ValidationResult, error) {
	if req == nil {
		return ValidationResult{}, fmt.Errorf("%w: nil request", ErrStructuralValidation)
	}

	var fieldErrs []FieldError
	if err := v.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ValidationResult{}, fmt.Errorf("%w: %v", ErrStructuralValidation, err)
		}
		for _, fe := range verrs {
			if structuralTags[fe.Tag()] {
				return ValidationResult{}, fmt.Errorf("%w: %s %s",
					ErrStructuralValidation, fieldPath(fe), fe.Translate(v.trans))
			}
			fieldErrs = append(fieldErrs, FieldError{
				Field:   fieldPath(fe),
				Message: fe.Translate(v.trans),
			})
		}
	}

	fieldErrs = append(fieldErrs, crossFieldErrors(req)...)

	return ValidationResult{OK: len(fieldErrs) == 0, Errors: fieldErrs}, nil
}

// fieldPath strips the root struct name from the validator namespace and
// lowers it to the JSON path, e.g. "technical.input_mass".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	return strings.ToLower(ns)
}

// crossFieldErrors checks the invariants that span more than one field.
func crossFieldErrors(req *AnalysisRequest) []FieldError {
	var errs []FieldError

	t := req.Technical
	if t.OutputMass > t.InputMass {
		errs = append(errs, FieldError{
			Field:   "technical.output_mass",
			Message: "output_mass cannot exceed input_mass",
		})
	}
	if t.FinalMoisture > t.InitialMoisture {
		errs = append(errs, FieldError{
			Field:   "technical.final_moisture",
			Message: "final_moisture cannot exceed initial_moisture",
		})
	}
	if !(t.D10 <= t.D50 && t.D50 <= t.D90) {
		errs = append(errs, FieldError{
			Field:   "technical.d50",
			Message: "particle sizes must satisfy d10 <= d50 <= d90",
		})
	}
	if t.InitialProtein <= 0 {
		errs = append(errs, FieldError{
			Field:   "technical.initial_protein",
			Message: "initial_protein must be positive",
		})
	}

	env := req.Environmental
	switch t.ProcessType {
	case ProcessRF:
		if env.ElectricityKWh <= 0 {
			errs = append(errs, FieldError{
				Field:   "environmental.electricity_consumption",
				Message: "rf treatment requires electricity_consumption > 0",
			})
		}
	case ProcessIR:
		if env.CoolingKWh <= 0 {
			errs = append(errs, FieldError{
				Field:   "environmental.cooling_consumption",
				Message: "ir treatment requires cooling_consumption > 0",
			})
		}
	case ProcessBaseline:
		// no treatment-specific requirement
	}

	errs = append(errs, allocationErrors(env)...)

	return errs
}

// allocationErrors validates the allocation basis for the chosen method.
func allocationErrors(env EnvironmentalInputs) []FieldError {
	var errs []FieldError

	if len(env.MassFlows) == 0 {
		errs = append(errs, FieldError{
			Field:   "environmental.mass_flows",
			Message: "at least one product mass flow is required",
		})
	}

	needsValues := env.AllocationMethod == AllocationEconomic || env.AllocationMethod == AllocationHybrid
	if needsValues {
		if len(env.ProductValues) == 0 {
			errs = append(errs, FieldError{
				Field:   "environmental.product_values",
				Message: fmt.Sprintf("%s allocation requires product_values", env.AllocationMethod),
			})
		} else {
			for product := range env.MassFlows {
				if _, ok := env.ProductValues[product]; !ok {
					errs = append(errs, FieldError{
						Field:   "environmental.product_values",
						Message: fmt.Sprintf("missing economic value for product %q", product),
					})
				}
			}
		}
	}

	if env.AllocationMethod == AllocationHybrid {
		if env.HybridWeights == nil {
			errs = append(errs, FieldError{
				Field:   "environmental.hybrid_weights",
				Message: "hybrid allocation requires hybrid_weights",
			})
		} else if math.Abs(env.HybridWeights.Economic+env.HybridWeights.Physical-1) > HybridWeightTolerance {
			errs = append(errs, FieldError{
				Field:   "environmental.hybrid_weights",
				Message: "hybrid_weights must sum to 1",
			})
		}
	}

	return errs
}
