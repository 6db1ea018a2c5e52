package realestate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth/internal/shared/errs"
)

type mockRepo struct {
	created []CreateParams
}

func (m *mockRepo) Create(ctx context.Context, params CreateParams) (*Property, error) {
	m.created = append(m.created, params)
	return &Property{ID: params.ID, UserID: params.UserID, Name: params.Name, CurrentValueUSD: params.CurrentValue()}, nil
}

func (m *mockRepo) ListByUser(ctx context.Context, userID string) ([]*Property, error) {
	return nil, nil
}

func TestService_Create(t *testing.T) {
	value := 500000.0
	changed := 0
	svc := NewService(&mockRepo{}, func(ctx context.Context, userID string) { changed++ })

	p, err := svc.Create(context.Background(), CreateParams{UserID: "u1", Name: "Lake house", CurrentValueUSD: &value})
	require.NoError(t, err)
	assert.Equal(t, 500000.0, p.CurrentValueUSD)
	assert.Equal(t, 1, changed)

	p, err = svc.Create(context.Background(), CreateParams{UserID: "u1", Name: "Lot"})
	require.NoError(t, err)
	assert.Zero(t, p.CurrentValueUSD)
}

func TestService_CreateValidation(t *testing.T) {
	negative := -1.0
	repo := &mockRepo{}
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateParams{UserID: "u1", Name: "  "})
	assert.True(t, errs.Is(err, errs.KindValidation))

	_, err = svc.Create(context.Background(), CreateParams{UserID: "u1", Name: "Condo", CurrentValueUSD: &negative})
	assert.True(t, errs.Is(err, errs.KindValidation))

	assert.Empty(t, repo.created)
}

func TestValues(t *testing.T) {
	assert.Equal(t, []float64{1, 2}, Values([]*Property{{CurrentValueUSD: 1}, {CurrentValueUSD: 2}}))
	assert.Empty(t, Values(nil))
}
