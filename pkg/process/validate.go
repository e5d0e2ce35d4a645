package process

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/flowlane/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the per-record constraints of s: every lane and node has
// an id, every node names a lane and a known element kind, and adjacency
// lists contain no empty ids. All violations are reported together as one
// INTEGRITY error whose "violations" detail lists them.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.Integrity("snapshot cannot be nil")
	}
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(errors.ErrCodeIntegrity, err, "invalid snapshot")
	}
	violations := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, describe(fe))
	}
	return errors.Integrity("invalid snapshot: %s", strings.Join(violations, "; ")).
		WithDetail("violations", violations)
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Snapshot.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: required", field)
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of [%s]", field, fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s", field, fe.Tag())
	}
}
