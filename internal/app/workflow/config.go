package workflow

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/slok/csflow/internal/model"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validateInst
}

// Config is the behaviour of a workflow run.
type Config struct {
	// ApplyMode is how the change set is applied after the mutations.
	ApplyMode model.ApplyMode `validate:"oneof=skip request force"`
	// WaitForApproval keeps waiting while the change set is pending approval.
	WaitForApproval bool
	// WaitForActions keeps waiting while the actions of an applied change set are running.
	WaitForActions bool
	// PollInterval is the wait between change set polls and force apply retries.
	PollInterval time.Duration `validate:"gt=0"`
}

func (c Config) validate() error {
	return convertValidationError(validatorInstance().Struct(c))
}

type requestValidation struct {
	ChangeSetID   string `validate:"required"`
	ChangeSetName string `validate:"required_if=ChangeSetID create"`
}

func (r Request) validate() error {
	err := validatorInstance().Struct(requestValidation{
		ChangeSetID:   r.ChangeSetID,
		ChangeSetName: r.ChangeSetName,
	})
	if err := convertValidationError(err); err != nil {
		return err
	}

	if (r.Properties != nil || r.TriggerManagementFunction) && r.Component.IsZero() {
		return fmt.Errorf("component is required to set properties or trigger a management function: %w", model.ErrNotValid)
	}

	return r.Config.validate()
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		msgs := make([]string, 0, len(ves))
		for _, fe := range ves {
			msgs = append(msgs, fmt.Sprintf("%s failed validation for tag '%s'", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return fmt.Errorf("%s: %w", strings.Join(msgs, ", "), model.ErrNotValid)
	}

	return fmt.Errorf("%w: %w", model.ErrNotValid, err)
}
