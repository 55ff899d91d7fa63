package http

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/highcrestlabs/academy-payments/internal/domain/model"
	"github.com/highcrestlabs/academy-payments/internal/domain/provider"
	"github.com/highcrestlabs/academy-payments/internal/domain/repository"
)

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) Create(ctx context.Context, record *model.PaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockPaymentRepository) FindByReference(ctx context.Context, ref string) (*model.PaymentRecord, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentRecord), args.Error(1)
}

func (m *mockPaymentRepository) MarkCompleted(ctx context.Context, ref string, res *provider.VerifyResponse) (*model.PaymentRecord, error) {
	args := m.Called(ctx, ref, res)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentRecord), args.Error(1)
}

func (m *mockPaymentRepository) MarkFailed(ctx context.Context, ref string, reason string) (*model.PaymentRecord, error) {
	args := m.Called(ctx, ref, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentRecord), args.Error(1)
}

func (m *mockPaymentRepository) MarkAbandoned(ctx context.Context, ref string) (*model.PaymentRecord, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentRecord), args.Error(1)
}

func (m *mockPaymentRepository) MarkRefunded(ctx context.Context, ref string, note string) (*model.PaymentRecord, error) {
	args := m.Called(ctx, ref, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentRecord), args.Error(1)
}

func (m *mockPaymentRepository) List(ctx context.Context, filters repository.ListFilters) ([]*model.PaymentRecord, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.PaymentRecord), args.Get(1).(int64), args.Error(2)
}

func (m *mockPaymentRepository) Stats(ctx context.Context) ([]repository.StatusStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.StatusStat), args.Error(1)
}

func (m *mockPaymentRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*model.PaymentRecord, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentRecord), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Initialize(ctx context.Context, req *provider.InitializeRequest) (*provider.InitializeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.InitializeResponse), args.Error(1)
}

func (m *mockGateway) Verify(ctx context.Context, reference string) (*provider.VerifyResponse, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.VerifyResponse), args.Error(1)
}

type mockWebhookRepository struct {
	mock.Mock
}

func (m *mockWebhookRepository) SaveEvent(ctx context.Context, eventType, reference string, data model.JSONB) (string, error) {
	args := m.Called(ctx, eventType, reference, data)
	return args.String(0), args.Error(1)
}

func (m *mockWebhookRepository) MarkOutcome(ctx context.Context, eventID, outcome string) error {
	args := m.Called(ctx, eventID, outcome)
	return args.Error(0)
}
