package store_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/campusd/professor-trust/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newProfessor(t *testing.T, name, email, phone string) *store.Professor {
	t.Helper()
	p := &store.Professor{Name: name, Email: email, Phone: phone}
	require.NoError(t, p.SetPassword("s3cret"))
	return p
}

func TestCreateAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := newProfessor(t, "Ada", "ada@example.edu", "555-0001")
	require.NoError(t, s.Create(ctx, p))
	assert.NotEmpty(t, p.ID)

	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@example.edu", got.Email)
	assert.True(t, got.CheckPassword("s3cret"))
	assert.False(t, got.CheckPassword("wrong"))
}

func TestGetByEmail(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := newProfessor(t, "Ada", "ada@example.edu", "555-0001")
	require.NoError(t, s.Create(ctx, p))

	got, err := s.GetByEmail(ctx, "ada@example.edu")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.GetByEmail(ctx, "nobody@example.edu")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetMissing(t *testing.T) {
	s := testStore(t)

	_, err := s.GetByID(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDuplicateEmail(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newProfessor(t, "Ada", "ada@example.edu", "555-0001")))

	err := s.Create(ctx, newProfessor(t, "Eve", "ada@example.edu", "555-0002"))
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestDuplicatePhone(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newProfessor(t, "Ada", "ada@example.edu", "555-0001")))

	err := s.Create(ctx, newProfessor(t, "Eve", "eve@example.edu", "555-0001"))
	assert.ErrorIs(t, err, store.ErrDuplicatePhone)
}

func TestList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newProfessor(t, "Ada", "ada@example.edu", "555-0001")))
	require.NoError(t, s.Create(ctx, newProfessor(t, "Bob", "bob@example.edu", "555-0002")))

	professors, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, professors, 2)
}

func TestUpdatePartial(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := newProfessor(t, "Ada", "ada@example.edu", "555-0001")
	require.NoError(t, s.Create(ctx, p))

	name := "Ada Lovelace"
	updated, err := s.Update(ctx, p.ID, store.Update{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, "ada@example.edu", updated.Email)
	// Credentials survive a profile update untouched.
	assert.True(t, updated.CheckPassword("s3cret"))
}

func TestUpdateDuplicateEmail(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newProfessor(t, "Ada", "ada@example.edu", "555-0001")))
	p := newProfessor(t, "Bob", "bob@example.edu", "555-0002")
	require.NoError(t, s.Create(ctx, p))

	email := "ada@example.edu"
	_, err := s.Update(ctx, p.ID, store.Update{Email: &email})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestUpdateMissing(t *testing.T) {
	s := testStore(t)

	name := "Ghost"
	_, err := s.Update(context.Background(), "no-such-id", store.Update{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := newProfessor(t, "Ada", "ada@example.edu", "555-0001")
	require.NoError(t, s.Create(ctx, p))

	deleted, err := s.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ID)

	_, err = s.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteMissing(t *testing.T) {
	s := testStore(t)

	_, err := s.Delete(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPasswordNeverMarshalled(t *testing.T) {
	p := &store.Professor{Name: "Ada", Email: "ada@example.edu", Phone: "555-0001"}
	require.NoError(t, p.SetPassword("s3cret"))

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), p.PasswordHash)
}

func TestFullRecordExposesHash(t *testing.T) {
	p := &store.Professor{Name: "Ada", Email: "ada@example.edu", Phone: "555-0001"}
	require.NoError(t, p.SetPassword("s3cret"))

	raw, err := json.Marshal(p.Full())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, p.PasswordHash, decoded["password"])
}

func TestPasswordHashingIsSalted(t *testing.T) {
	a := &store.Professor{}
	b := &store.Professor{}
	require.NoError(t, a.SetPassword("same-password"))
	require.NoError(t, b.SetPassword("same-password"))

	assert.NotEqual(t, a.PasswordHash, b.PasswordHash)
	assert.True(t, store.CheckHash(a.PasswordHash, "same-password"))
}
