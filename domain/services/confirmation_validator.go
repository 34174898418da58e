package services

import (
	"fmt"
	"strings"
	"time"

	"fundledger/domain/apperrors"
	"fundledger/domain/interfaces"
	"fundledger/domain/utils"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ConfirmationInput is an unvalidated request to confirm a wire, as received from a caller
type ConfirmationInput struct {
	TransferID        string  `validate:"required,max=64"`
	TeamID            string  `validate:"required,max=64"`
	ConfirmedBy       string  `validate:"required,max=64"`
	FundsReceivedDate string  `validate:"required"`
	AmountReceived    string  `validate:"required"`
	BankReference     *string `validate:"omitempty,max=100"`
	ConfirmationNotes *string `validate:"omitempty,max=1000"`
	ProofDocumentID   *string `validate:"omitempty,max=64"`
}

// ConfirmationLimits bounds what a single confirmation may claim
type ConfirmationLimits struct {
	MaxAmountReceived       decimal.Decimal
	FutureDateToleranceDays int
}

// ConfirmationValidator turns raw input into a ConfirmationCommand without touching storage
type ConfirmationValidator struct {
	validate *validator.Validate
	limits   ConfirmationLimits
	now      func() time.Time
}

// NewConfirmationValidator creates a validator. now defaults to time.Now.
func NewConfirmationValidator(limits ConfirmationLimits, now func() time.Time) *ConfirmationValidator {
	if now == nil {
		now = time.Now
	}
	return &ConfirmationValidator{
		validate: validator.New(),
		limits:   limits,
		now:      now,
	}
}

// Validate checks field shapes, the amount and the funds-received date
func (v *ConfirmationValidator) Validate(in ConfirmationInput) (*interfaces.ConfirmationCommand, error) {
	in.BankReference = trimOptional(in.BankReference)
	in.ConfirmationNotes = trimOptional(in.ConfirmationNotes)
	in.ProofDocumentID = trimOptional(in.ProofDocumentID)
	in.TransferID = strings.TrimSpace(in.TransferID)
	in.AmountReceived = strings.TrimSpace(in.AmountReceived)
	in.FundsReceivedDate = strings.TrimSpace(in.FundsReceivedDate)

	if err := v.validate.Struct(in); err != nil {
		return nil, apperrors.FromValidator(err)
	}

	amount, err := v.validateAmount(in.AmountReceived)
	if err != nil {
		return nil, err
	}

	receivedDate, err := v.validateDate(in.FundsReceivedDate)
	if err != nil {
		return nil, err
	}

	return &interfaces.ConfirmationCommand{
		TransferID:        in.TransferID,
		TeamID:            in.TeamID,
		ConfirmedBy:       in.ConfirmedBy,
		FundsReceivedDate: receivedDate,
		AmountReceived:    amount,
		BankReference:     in.BankReference,
		ConfirmationNotes: in.ConfirmationNotes,
		ProofDocumentID:   in.ProofDocumentID,
	}, nil
}

func (v *ConfirmationValidator) validateAmount(raw string) (decimal.Decimal, error) {
	amount, err := utils.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, apperrors.NewValidationError("amountReceived", "amountReceived must be a decimal number")
	}
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.NewValidationError("amountReceived", "amountReceived must be greater than zero")
	}
	if !utils.HasAtMostDecimalPlaces(amount, 2) {
		return decimal.Zero, apperrors.NewValidationError("amountReceived", "amountReceived cannot have more than 2 decimal places")
	}
	if amount.GreaterThan(v.limits.MaxAmountReceived) {
		return decimal.Zero, apperrors.NewValidationError("amountReceived",
			fmt.Sprintf("amountReceived cannot exceed %s", v.limits.MaxAmountReceived.StringFixed(2)))
	}
	return amount.Round(2), nil
}

func (v *ConfirmationValidator) validateDate(raw string) (time.Time, error) {
	date, err := ParseFundsReceivedDate(raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("fundsReceivedDate", "fundsReceivedDate must be a valid date (YYYY-MM-DD)")
	}

	today := truncateToDate(v.now().UTC())
	latest := today.AddDate(0, 0, v.limits.FutureDateToleranceDays)
	if date.After(latest) {
		return time.Time{}, apperrors.NewValidationError("fundsReceivedDate",
			fmt.Sprintf("fundsReceivedDate cannot be more than %d days in the future", v.limits.FutureDateToleranceDays))
	}
	return date, nil
}

// ParseFundsReceivedDate accepts a calendar date or an RFC 3339 timestamp and returns UTC midnight
func ParseFundsReceivedDate(raw string) (time.Time, error) {
	if date, err := time.Parse(dateLayout, raw); err == nil {
		return date, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return truncateToDate(ts.UTC()), nil
}

// FormatDate renders a funds-received date the way it is accepted
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
