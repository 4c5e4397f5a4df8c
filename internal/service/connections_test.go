package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/pribylovaa/sqlchat/internal/models"
	"github.com/pribylovaa/sqlchat/internal/storage"
	"github.com/pribylovaa/sqlchat/mocks"
	"github.com/stretchr/testify/require"
)

// Тесты сервиса подключений:
// - Test: успех, сбой драйвера (пароль вырезается из сообщения), неподдерживаемый тип, таймаут;
// - валидация параметров и алиасы типов (postgres, sqlserver);
// - Save шифрует пароль; List/TestSaved расшифровывают и перепроверяют сохранённое.

type connFixture struct {
	svc    *Connections
	store  *mocks.MockConnectionStorage
	prober *mocks.MockProber
	sealer *Sealer
}

func newConnFixture(t *testing.T) connFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	sealer, err := NewSealer("credentials-key")
	require.NoError(t, err)

	f := connFixture{
		store:  mocks.NewMockConnectionStorage(ctrl),
		prober: mocks.NewMockProber(ctrl),
		sealer: sealer,
	}
	f.svc = NewConnections(f.store, f.prober, sealer, time.Second)
	return f
}

func validParams() models.ConnectionParams {
	return models.ConnectionParams{
		DBType:   "postgres",
		Host:     " db.internal ",
		Port:     5432,
		DBName:   "sales",
		Username: "reader",
		Password: "s3cr3t-pw",
	}
}

func TestConnections_Test_OK(t *testing.T) {
	t.Parallel()

	f := newConnFixture(t)

	f.prober.EXPECT().Ping(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, p models.ConnectionParams) error {
			_, hasDeadline := ctx.Deadline()
			require.True(t, hasDeadline)
			require.Equal(t, DBTypePostgreSQL, p.DBType)
			require.Equal(t, "db.internal", p.Host)
			return nil
		})

	res, err := f.svc.Test(context.Background(), validParams())
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, "Connection successful!", res.Message)
}

func TestConnections_Test_ProbeFailure_RedactsPassword(t *testing.T) {
	t.Parallel()

	f := newConnFixture(t)

	f.prober.EXPECT().Ping(gomock.Any(), gomock.Any()).
		Return(errors.New("login failed for reader with password s3cr3t-pw"))

	res, err := f.svc.Test(context.Background(), validParams())
	require.NoError(t, err)
	require.False(t, res.OK)
	require.Equal(t, "Connection failed: login failed for reader with password ***", res.Message)
}

func TestConnections_Test_UnsupportedType(t *testing.T) {
	t.Parallel()

	f := newConnFixture(t)
	p := validParams()
	p.DBType = "oracle"

	res, err := f.svc.Test(context.Background(), p)
	require.NoError(t, err)
	require.False(t, res.OK)
	require.Equal(t, "Unsupported database type: oracle", res.Message)
}

func TestConnections_Test_InvalidParams(t *testing.T) {
	t.Parallel()

	f := newConnFixture(t)

	mutations := map[string]func(p *models.ConnectionParams){
		"no_host":     func(p *models.ConnectionParams) { p.Host = "  " },
		"port_zero":   func(p *models.ConnectionParams) { p.Port = 0 },
		"port_big":    func(p *models.ConnectionParams) { p.Port = 70000 },
		"no_db_name":  func(p *models.ConnectionParams) { p.DBName = "" },
		"no_username": func(p *models.ConnectionParams) { p.Username = "" },
	}

	for name, mutate := range mutations {
		p := validParams()
		mutate(&p)
		_, err := f.svc.Test(context.Background(), p)
		require.ErrorIs(t, err, ErrInvalidInput, name)
	}
}

func TestNormalizeDBType(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"mysql":      DBTypeMySQL,
		"MySQL":      DBTypeMySQL,
		"postgresql": DBTypePostgreSQL,
		"postgres":   DBTypePostgreSQL,
		"mssql":      DBTypeMSSQL,
		" sqlserver": DBTypeMSSQL,
	}
	for in, want := range cases {
		got, ok := NormalizeDBType(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}

	_, ok := NormalizeDBType("sqlite")
	require.False(t, ok)
}

func TestConnections_Save_EncryptsPassword(t *testing.T) {
	t.Parallel()

	f := newConnFixture(t)
	userID := uuid.New()

	var saved *models.Connection
	f.store.EXPECT().SaveConnection(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c *models.Connection) error {
			saved = c
			return nil
		})

	conn, err := f.svc.Save(context.Background(), userID, validParams())
	require.NoError(t, err)
	require.Same(t, saved, conn)
	require.Equal(t, userID, conn.UserID)
	require.Equal(t, DBTypePostgreSQL, conn.DBType)
	require.NotContains(t, string(conn.EncryptedPassword), "s3cr3t-pw")

	revealed, err := f.svc.Reveal(conn)
	require.NoError(t, err)
	require.Equal(t, "s3cr3t-pw", revealed.Password)
	require.Equal(t, "db.internal", revealed.Host)
}

func TestConnections_Save_Errors(t *testing.T) {
	t.Parallel()

	f := newConnFixture(t)

	p := validParams()
	p.DBType = "oracle"
	_, err := f.svc.Save(context.Background(), uuid.New(), p)
	require.ErrorIs(t, err, ErrUnsupportedDB)

	f.store.EXPECT().SaveConnection(gomock.Any(), gomock.Any()).Return(storage.ErrNotFound)
	_, err = f.svc.Save(context.Background(), uuid.New(), validParams())
	require.ErrorIs(t, err, ErrUnauthenticated)

	dbErr := errors.New("db down")
	f.store.EXPECT().SaveConnection(gomock.Any(), gomock.Any()).Return(dbErr)
	_, err = f.svc.Save(context.Background(), uuid.New(), validParams())
	require.ErrorIs(t, err, dbErr)
}

func TestConnections_TestSaved(t *testing.T) {
	t.Parallel()

	f := newConnFixture(t)
	userID := uuid.New()

	sealed, err := f.sealer.Seal([]byte("s3cr3t-pw"))
	require.NoError(t, err)
	stored := models.Connection{
		ID: uuid.New(), UserID: userID, DBType: DBTypeMySQL,
		Host: "mysql.internal", Port: 3306, DBName: "app", Username: "root",
		EncryptedPassword: sealed,
	}

	f.store.EXPECT().ConnectionsByUser(gomock.Any(), userID).Return([]models.Connection{stored}, nil).Times(2)
	f.prober.EXPECT().Ping(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p models.ConnectionParams) error {
			require.Equal(t, "s3cr3t-pw", p.Password)
			require.Equal(t, 3306, p.Port)
			return nil
		})

	res, err := f.svc.TestSaved(context.Background(), userID, stored.ID)
	require.NoError(t, err)
	require.True(t, res.OK)

	_, err = f.svc.TestSaved(context.Background(), userID, uuid.New())
	require.ErrorIs(t, err, ErrConnectionNotFound)
}
