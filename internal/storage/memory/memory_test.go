package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/sqlchat/internal/models"
	"github.com/pribylovaa/sqlchat/internal/storage"
	"github.com/stretchr/testify/require"
)

// Тесты in-memory хранилища:
// - уникальность email без учёта регистра и уникальность id;
// - копии записей не разделяют состояние с хранилищем;
// - обновление хэша пароля;
// - подключения: владелец обязателен, сортировка «новые первыми», изоляция пользователей;
// - отменённый контекст и конкурентный доступ.

func newUser(email string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New(),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSaveUser_And_Lookup_OK(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()
	u := newUser("User@Example.com")
	require.NoError(t, st.SaveUser(ctx, u))

	got, err := st.UserByEmail(ctx, "user@example.COM")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got, err = st.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "User@Example.com", got.Email)

	// изменение копии не затрагивает хранилище.
	got.PasswordHash = "tampered"
	again, err := st.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "hash", again.PasswordHash)
}

func TestSaveUser_Duplicates(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()
	a := newUser("a@example.com")
	require.NoError(t, st.SaveUser(ctx, a))

	err := st.SaveUser(ctx, newUser("A@EXAMPLE.COM"))
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	b := newUser("b@example.com")
	b.ID = a.ID
	err = st.SaveUser(ctx, b)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestLookup_NotFound(t *testing.T) {
	t.Parallel()

	st := New()
	_, err := st.UserByEmail(context.Background(), "absent@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)

	err = st.UpdatePasswordHash(context.Background(), uuid.New(), "h")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdatePasswordHash_OK(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()
	u := newUser("rehash@example.com")
	require.NoError(t, st.SaveUser(ctx, u))

	require.NoError(t, st.UpdatePasswordHash(ctx, u.ID, "new-hash"))

	got, err := st.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
}

func TestConnections_OK(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()
	owner := newUser("owner@example.com")
	other := newUser("other@example.com")
	require.NoError(t, st.SaveUser(ctx, owner))
	require.NoError(t, st.SaveUser(ctx, other))

	now := time.Now().UTC()
	older := &models.Connection{ID: uuid.New(), UserID: owner.ID, DBType: "mysql", CreatedAt: now.Add(-time.Minute), EncryptedPassword: []byte{1}}
	newer := &models.Connection{ID: uuid.New(), UserID: owner.ID, DBType: "postgresql", CreatedAt: now, EncryptedPassword: []byte{2}}
	foreign := &models.Connection{ID: uuid.New(), UserID: other.ID, DBType: "mssql", CreatedAt: now}

	require.NoError(t, st.SaveConnection(ctx, older))
	require.NoError(t, st.SaveConnection(ctx, newer))
	require.NoError(t, st.SaveConnection(ctx, foreign))

	got, err := st.ConnectionsByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, newer.ID, got[0].ID)
	require.Equal(t, older.ID, got[1].ID)

	got[0].EncryptedPassword[0] = 0xFF
	again, err := st.ConnectionsByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, []byte{2}, again[0].EncryptedPassword)

	err = st.SaveConnection(ctx, newer)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestSaveConnection_UnknownOwner(t *testing.T) {
	t.Parallel()

	st := New()
	err := st.SaveConnection(context.Background(), &models.Connection{ID: uuid.New(), UserID: uuid.New()})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestContextCanceled(t *testing.T) {
	t.Parallel()

	st := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, st.SaveUser(ctx, newUser("c@example.com")), context.Canceled)

	_, err := st.UserByEmail(ctx, "c@example.com")
	require.ErrorIs(t, err, context.Canceled)

	_, err = st.ConnectionsByUser(ctx, uuid.New())
	require.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	st := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := newUser(uuid.NewString() + "@example.com")
			if err := st.SaveUser(ctx, u); err != nil {
				errs <- err
				return
			}
			if _, err := st.UserByID(ctx, u.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
