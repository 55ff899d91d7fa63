package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/highcrestlabs/academy-payments/internal/domain/model"
	"github.com/highcrestlabs/academy-payments/internal/domain/provider"
	"github.com/highcrestlabs/academy-payments/internal/domain/repository"
	"github.com/highcrestlabs/academy-payments/internal/reference"
)

// nigerianPhonePattern matches local and international Nigerian mobile numbers
var nigerianPhonePattern = regexp.MustCompile(`^(\+234|234|0)[789][01]\d{8}$`)

// ValidationError is a client-facing field-level rejection, raised before any
// I/O happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// InitiationInput is the enrollment submission. Only the program id is
// trusted from the client; the price always comes from the catalog.
type InitiationInput struct {
	Email     string `validate:"required,email"`
	FirstName string `validate:"required,min=2,max=100"`
	LastName  string `validate:"required,min=2,max=100"`
	Phone     string `validate:"required,ngphone"`
	ProgramID string `validate:"required"`

	// Request audit, not validated
	IPAddress string `validate:"-"`
	UserAgent string `validate:"-"`
}

// InitiationResult carries the hosted checkout handle back to the client
type InitiationResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// InitiationService creates a pending payment record and opens a transaction
// at the gateway. A record is never left silently pending when initiation is
// known to have failed: gateway rejection marks it failed with the gateway's
// message.
type InitiationService struct {
	payments    repository.PaymentRepository
	gateway     provider.Gateway
	validate    *validator.Validate
	callbackURL string
	logger      *zap.Logger
}

// NewInitiationService creates a new initiation service
func NewInitiationService(
	payments repository.PaymentRepository,
	gateway provider.Gateway,
	callbackURL string,
	logger *zap.Logger,
) *InitiationService {
	v := validator.New()
	// Errors only fire for a non-Func validator, which ngphone is not.
	_ = v.RegisterValidation("ngphone", func(fl validator.FieldLevel) bool {
		return nigerianPhonePattern.MatchString(fl.Field().String())
	})

	return &InitiationService{
		payments:    payments,
		gateway:     gateway,
		validate:    v,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

// Initiate validates the submission, persists a pending record and asks the
// gateway for a checkout URL.
func (s *InitiationService) Initiate(ctx context.Context, input InitiationInput) (*InitiationResult, error) {
	sanitized := sanitizeInput(input)

	if err := s.validate.Struct(&sanitized); err != nil {
		return nil, toValidationError(err)
	}

	program, ok := model.ProgramByID(sanitized.ProgramID)
	if !ok {
		return nil, &ValidationError{Field: "programId", Message: "invalid program selected"}
	}

	ref := reference.Generate()

	record := &model.PaymentRecord{
		Reference:   ref,
		Email:       sanitized.Email,
		FirstName:   sanitized.FirstName,
		LastName:    sanitized.LastName,
		Phone:       sanitized.Phone,
		ProgramID:   program.ID,
		ProgramName: program.Name,
		Amount:      program.Amount,
		Currency:    "NGN",
		Status:      model.PaymentStatusPending,
	}
	if sanitized.IPAddress != "" {
		record.IPAddress = &sanitized.IPAddress
	}
	if sanitized.UserAgent != "" {
		ua := sanitized.UserAgent
		if len(ua) > 500 {
			ua = ua[:500]
		}
		record.UserAgent = &ua
	}

	// Record first, gateway second: a gateway transaction must never exist
	// without a local record to reconcile against.
	if err := s.payments.Create(ctx, record); err != nil {
		return nil, err
	}

	res, err := s.gateway.Initialize(ctx, &provider.InitializeRequest{
		Reference:   ref,
		Email:       sanitized.Email,
		Amount:      program.Amount,
		CallbackURL: s.callbackURL,
		Metadata: map[string]interface{}{
			"student_name": sanitized.FirstName + " " + sanitized.LastName,
			"phone":        sanitized.Phone,
			"program_id":   program.ID,
			"program_name": program.Name,
		},
		Channels: []string{"card", "bank", "ussd", "bank_transfer"},
	})
	if err != nil {
		message := err.Error()
		var gerr *provider.GatewayError
		if errors.As(err, &gerr) {
			message = gerr.Message
		}
		if _, markErr := s.payments.MarkFailed(ctx, ref, message); markErr != nil {
			s.logger.Error("Failed to mark record failed after gateway rejection",
				zap.String("reference", ref),
				zap.Error(markErr))
		}
		s.logger.Error("Gateway initialization failed",
			zap.String("reference", ref),
			zap.String("program_id", program.ID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Payment initiated",
		zap.String("reference", ref),
		zap.String("program_id", program.ID),
		zap.Int64("amount", program.Amount))

	return &InitiationResult{
		AuthorizationURL: res.AuthorizationURL,
		AccessCode:       res.AccessCode,
		Reference:        ref,
	}, nil
}

// sanitizeInput trims whitespace, strips angle brackets and caps field length
// before validation.
func sanitizeInput(in InitiationInput) InitiationInput {
	in.Email = strings.ToLower(sanitizeField(in.Email))
	in.FirstName = sanitizeField(in.FirstName)
	in.LastName = sanitizeField(in.LastName)
	in.Phone = strings.ReplaceAll(sanitizeField(in.Phone), " ", "")
	in.ProgramID = sanitizeField(in.ProgramID)
	return in
}

func sanitizeField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	if len(s) > 500 {
		s = s[:500]
	}
	return s
}

// fieldMessages maps struct fields to user-facing rejection reasons
var fieldMessages = map[string]string{
	"Email":     "invalid email address",
	"FirstName": "first name must be 2-100 characters",
	"LastName":  "last name must be 2-100 characters",
	"Phone":     "invalid Nigerian phone number",
	"ProgramID": "program is required",
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		message, ok := fieldMessages[field]
		if !ok {
			message = "invalid value"
		}
		return &ValidationError{Field: field, Message: message}
	}
	return &ValidationError{Field: "request", Message: "invalid request"}
}
