package businessflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald/app/dto"
	"github.com/heraldhq/herald/repository"
)

func TestUserFlowLifecycle(t *testing.T) {
	tdb, _ := setupFlowTest(t)

	flow := NewUserFlow(repository.NewUserRepository(tdb.DB), tdb.DB)
	ctx := context.Background()

	// Empty store lists as success
	empty, err := flow.GetAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty.Users)
	assert.Empty(t, empty.Users)

	created, err := flow.Add(ctx, &dto.UserRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Phone:     "+15550001111",
	}, nil)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEmpty(t, created.UUID)

	// Duplicate email is refused
	_, err = flow.Add(ctx, &dto.UserRequest{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "grace@example.com",
		Phone:     "+15550002222",
	}, nil)
	require.Error(t, err)
	assert.True(t, IsEmailTaken(err))

	// Full-replace update
	updated, err := flow.Update(ctx, &dto.UserRequest{
		ID:        created.ID,
		FirstName: "Grace",
		LastName:  "Hopper-Murray",
		Email:     "grace@example.com",
		Phone:     "+15550003333",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hopper-Murray", updated.LastName)
	assert.Equal(t, "+15550003333", updated.Phone)

	// Unknown id is reported as not found
	_, err = flow.Update(ctx, &dto.UserRequest{
		ID:        99999,
		FirstName: "No",
		LastName:  "One",
		Email:     "noone@example.com",
		Phone:     "+15550004444",
	}, nil)
	require.Error(t, err)
	assert.True(t, IsUserNotFound(err))

	// Delete, then deleting again is a no-op
	require.NoError(t, flow.Delete(ctx, created.ID, nil))
	require.NoError(t, flow.Delete(ctx, created.ID, nil))

	final, err := flow.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, final.Users)
}
