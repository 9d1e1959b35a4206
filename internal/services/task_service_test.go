package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTaskCreate_OwnerForcedToCaller(t *testing.T) {
	db := newTestDB(t, "task_owner")
	svc := NewTaskService(db)
	alice := registerUser(t, db, "alice", "alice@x.com")

	task, err := svc.Create(context.Background(), asCaller(alice, false), "buy milk", "")
	require.NoError(t, err)
	require.Equal(t, alice.ID, task.UserID)
	require.Equal(t, "buy milk", task.Title)
	require.Empty(t, task.Description)
	require.False(t, task.Completed)
	require.False(t, task.Favoris)
}

func TestTaskCreate_TitleValidation(t *testing.T) {
	db := newTestDB(t, "task_title")
	svc := NewTaskService(db)
	alice := registerUser(t, db, "alice", "alice@x.com")
	caller := asCaller(alice, false)

	_, err := svc.Create(context.Background(), caller, "   ", "")
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	require.Contains(t, ve.Messages, "title is required")

	_, err = svc.Create(context.Background(), caller, strings.Repeat("x", 101), "")
	ve, ok = AsValidationError(err)
	require.True(t, ok)
	require.Contains(t, ve.Messages, "title must be at most 100 characters")

	// Exactly at the bound is fine.
	_, err = svc.Create(context.Background(), caller, strings.Repeat("x", 100), "")
	require.NoError(t, err)
}

func TestTaskList_OwnershipFiltering(t *testing.T) {
	db := newTestDB(t, "task_list")
	svc := NewTaskService(db)
	alice := registerUser(t, db, "alice", "alice@x.com")
	bob := registerUser(t, db, "bob", "bob@x.com")
	staff := registerUser(t, db, "root", "root@x.com")
	promoteToStaff(t, db, staff.ID)

	ctx := context.Background()
	_, err := svc.Create(ctx, asCaller(alice, false), "a1", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, asCaller(alice, false), "a2", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, asCaller(bob, false), "b1", "")
	require.NoError(t, err)

	aliceTasks, err := svc.List(ctx, asCaller(alice, false))
	require.NoError(t, err)
	require.Len(t, aliceTasks, 2)
	for _, task := range aliceTasks {
		require.Equal(t, alice.ID, task.UserID, "a non-staff listing never crosses owners")
	}

	staffTasks, err := svc.List(ctx, asCaller(staff, true))
	require.NoError(t, err)
	require.Len(t, staffTasks, 3)
}

func TestTaskGet_MasksOtherUsersTasks(t *testing.T) {
	db := newTestDB(t, "task_get_mask")
	svc := NewTaskService(db)
	alice := registerUser(t, db, "alice", "alice@x.com")
	bob := registerUser(t, db, "bob", "bob@x.com")
	staff := registerUser(t, db, "root", "root@x.com")
	promoteToStaff(t, db, staff.ID)

	ctx := context.Background()
	task, err := svc.Create(ctx, asCaller(alice, false), "secret", "")
	require.NoError(t, err)

	// Bob gets the same error as for a missing task.
	_, err = svc.Get(ctx, asCaller(bob, false), task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
	_, err = svc.Get(ctx, asCaller(bob, false), 99999)
	require.ErrorIs(t, err, ErrTaskNotFound)

	// Staff bypass ownership.
	got, err := svc.Get(ctx, asCaller(staff, true), task.ID)
	require.NoError(t, err)
	require.Equal(t, task.ID, got.ID)
}

func TestTaskUpdate_PartialAndRoundTrip(t *testing.T) {
	db := newTestDB(t, "task_update")
	svc := NewTaskService(db)
	alice := registerUser(t, db, "alice", "alice@x.com")
	caller := asCaller(alice, false)

	ctx := context.Background()
	task, err := svc.Create(ctx, caller, "buy milk", "2 liters")
	require.NoError(t, err)

	// Round-trip before the mutation.
	got, err := svc.Get(ctx, caller, task.ID)
	require.NoError(t, err)
	require.Equal(t, task.Title, got.Title)
	require.Equal(t, task.Description, got.Description)
	require.Equal(t, task.Completed, got.Completed)
	require.Equal(t, task.Favoris, got.Favoris)

	time.Sleep(10 * time.Millisecond) // so updated_at visibly advances

	completed := true
	updated, err := svc.Update(ctx, caller, task.ID, taskUpdateWith(nil, nil, &completed, nil))
	require.NoError(t, err)
	require.True(t, updated.Completed)
	require.Equal(t, "buy milk", updated.Title, "untouched fields keep their values")
	require.Equal(t, "2 liters", updated.Description)
	require.True(t, updated.UpdatedAt.After(got.UpdatedAt), "updated_at advances on mutation")

	got, err = svc.Get(ctx, caller, task.ID)
	require.NoError(t, err)
	require.True(t, got.Completed)
}

func TestTaskUpdate_Forbidden(t *testing.T) {
	db := newTestDB(t, "task_update_forbidden")
	svc := NewTaskService(db)
	alice := registerUser(t, db, "alice", "alice@x.com")
	bob := registerUser(t, db, "bob", "bob@x.com")

	ctx := context.Background()
	task, err := svc.Create(ctx, asCaller(alice, false), "secret", "")
	require.NoError(t, err)

	favoris := true
	_, err = svc.Update(ctx, asCaller(bob, false), task.ID, taskUpdateWith(nil, nil, nil, &favoris))
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskDelete(t *testing.T) {
	db := newTestDB(t, "task_delete")
	svc := NewTaskService(db)
	alice := registerUser(t, db, "alice", "alice@x.com")
	bob := registerUser(t, db, "bob", "bob@x.com")

	ctx := context.Background()
	task, err := svc.Create(ctx, asCaller(alice, false), "to delete", "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, asCaller(bob, false), task.ID), ErrTaskNotFound)

	require.NoError(t, svc.Delete(ctx, asCaller(alice, false), task.ID))
	_, err = svc.Get(ctx, asCaller(alice, false), task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
}
