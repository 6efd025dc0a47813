package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/openwater/aquabill/internal/customer/domain"
	"github.com/openwater/aquabill/internal/customer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Ana Morales",
		Email: "ana@example.com",
		Phone: "555-0100",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Ana Morales", created.Name)
	assert.Zero(t, created.AvailableCredit)

	got, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)
}

func TestCreate_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "  ", Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ana", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestGetByID_Errors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	_, err = svc.GetByID(ctx, node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_CursorPagination(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{
			Name:  fmt.Sprintf("Customer %d", i),
			Email: fmt.Sprintf("c%d@example.com", i),
		})
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	token := ""
	pages := 0
	for {
		resp, err := svc.List(ctx, domain.ListCustomerRequest{PageSize: 2, PageToken: token})
		require.NoError(t, err)
		pages++

		for _, c := range resp.Customers {
			assert.False(t, seen[c.ID.String()], "customer %s returned twice", c.ID)
			seen[c.ID.String()] = true
		}

		if resp.PageInfo == nil || !resp.PageInfo.HasMore {
			break
		}
		token = resp.PageInfo.NextPageToken
		require.NotEmpty(t, token)
	}

	assert.Len(t, seen, 5)
	assert.Equal(t, 3, pages)
}

func TestList_InvalidPageToken(t *testing.T) {
	svc := newService(t)

	_, err := svc.List(context.Background(), domain.ListCustomerRequest{PageToken: "%%%not-base64%%%"})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

func TestList_FiltersByEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Luis", Email: "luis@example.com"})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListCustomerRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Ana", resp.Customers[0].Name)
}
