package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/castlebay/warroom-go/internal/domain/scoring"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

func (v *Validator) formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Namespace(),
				e.Tag(),
				e.Value(),
			))
		}
		return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
	}
	return err
}

// ValidateConfig validates the full configuration, including the cross-
// field rules tags cannot express.
func ValidateConfig(cfg *Config) error {
	if err := NewValidator().Validate(cfg); err != nil {
		return err
	}

	if err := validateGate("scoring.match.gate.manual", cfg.Scoring.Match.Gate.Manual); err != nil {
		return err
	}
	if err := validateGate("scoring.match.gate.auto", cfg.Scoring.Match.Gate.Auto); err != nil {
		return err
	}

	if cfg.Scoring.Priority.MaxScore <= cfg.Scoring.Priority.MinScore {
		return fmt.Errorf("scoring.priority: max_score must exceed min_score")
	}
	return nil
}

func validateGate(name string, g scoring.GateParams) error {
	if g.Ceiling <= g.Floor {
		return fmt.Errorf("%s: ceiling must exceed floor", name)
	}
	return nil
}
