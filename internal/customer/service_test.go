package customer_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agilebooks/agilebooks/internal/customer"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name       string
		params     customer.CreateParams
		setupMocks func(repo *customer.MockRepository)
		wantErr    bool
		check      func(t *testing.T, c *customer.Customer)
	}

	tests := []testCase{
		{
			name: "Success",
			params: customer.CreateParams{
				Name:  "Acme Corp",
				Email: "  Billing@Acme.COM ",
			},
			setupMocks: func(repo *customer.MockRepository) {
				repo.EXPECT().NextNumber(gomock.Any()).Return(int64(12), nil)
				repo.EXPECT().
					CreateCustomer(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, c *customer.Customer) error {
						c.ID = uuid.New()
						return nil
					})
			},
			check: func(t *testing.T, c *customer.Customer) {
				assert.Equal(t, "CUST-000012", c.Number)
				assert.Equal(t, "billing@acme.com", c.Email)
				assert.Equal(t, customer.TermsNet30, c.PaymentTerms)
				assert.True(t, c.IsActive)
			},
		},
		{
			name:    "MissingName",
			params:  customer.CreateParams{Email: "x@y.com"},
			wantErr: true,
		},
		{
			name: "UnknownPaymentTerms",
			params: customer.CreateParams{
				Name:         "Acme Corp",
				PaymentTerms: customer.PaymentTerms("Net 365"),
			},
			wantErr: true,
		},
		{
			name: "ExplicitTermsKept",
			params: customer.CreateParams{
				Name:         "Acme Corp",
				PaymentTerms: customer.TermsDueOnReceipt,
			},
			setupMocks: func(repo *customer.MockRepository) {
				repo.EXPECT().NextNumber(gomock.Any()).Return(int64(13), nil)
				repo.EXPECT().CreateCustomer(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, c *customer.Customer) {
				assert.Equal(t, customer.TermsDueOnReceipt, c.PaymentTerms)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := customer.NewMockRepository(ctrl)

			if tc.setupMocks != nil {
				tc.setupMocks(repo)
			}

			svc := customer.NewService(repo)

			c, err := svc.Create(context.Background(), tc.params)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)

			if tc.check != nil {
				tc.check(t, c)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	t.Run("BlankNameRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := customer.NewMockRepository(ctrl)

		repo.EXPECT().GetCustomer(gomock.Any(), id).
			Return(&customer.Customer{ID: id, Name: "Acme Corp"}, nil)

		svc := customer.NewService(repo)

		blank := "   "
		_, err := svc.Update(context.Background(), id, customer.UpdateParams{Name: &blank})
		require.Error(t, err)
	})

	t.Run("PartialUpdateLeavesOtherFields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := customer.NewMockRepository(ctrl)

		repo.EXPECT().GetCustomer(gomock.Any(), id).
			Return(&customer.Customer{ID: id, Name: "Acme Corp", Email: "billing@acme.com"}, nil)
		repo.EXPECT().UpdateCustomer(gomock.Any(), gomock.Any()).Return(nil)

		svc := customer.NewService(repo)

		phone := "555-0101"
		c, err := svc.Update(context.Background(), id, customer.UpdateParams{Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", c.Name)
		assert.Equal(t, "billing@acme.com", c.Email)
		assert.Equal(t, "555-0101", c.Phone)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := customer.NewMockRepository(ctrl)

		repo.EXPECT().GetCustomer(gomock.Any(), id).Return(nil, customer.ErrNotFound)

		svc := customer.NewService(repo)

		_, err := svc.Update(context.Background(), id, customer.UpdateParams{})
		require.ErrorIs(t, err, customer.ErrNotFound)
	})
}

func TestService_Deactivate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := customer.NewMockRepository(ctrl)

	id := uuid.New()
	repo.EXPECT().GetCustomer(gomock.Any(), id).Return(&customer.Customer{ID: id}, nil)
	repo.EXPECT().SetActive(gomock.Any(), id, false).Return(nil)

	svc := customer.NewService(repo)

	require.NoError(t, svc.Deactivate(context.Background(), id))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "CUST-000001", customer.FormatNumber(1))
	assert.Equal(t, "CUST-000456", customer.FormatNumber(456))
}
