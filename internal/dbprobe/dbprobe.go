// dbprobe проверяет доступность внешних БД пользователей через database/sql
// и нативные драйверы: pgx (PostgreSQL), go-sql-driver (MySQL), go-mssqldb (SQL Server).
package dbprobe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/pribylovaa/sqlchat/internal/models"
)

// ErrUnsupported — для типа БД нет драйвера.
var ErrUnsupported = errors.New("unsupported database type")

// Имена драйверов database/sql.
const (
	driverPostgres = "pgx"
	driverMySQL    = "mysql"
	driverMSSQL    = "sqlserver"
)

// defaultDialTimeout — таймаут установления соединения, если у контекста нет дедлайна.
const defaultDialTimeout = 5 * time.Second

type openFunc func(driver, dsn string) (*sql.DB, error)

// Prober открывает короткоживущее соединение и пингует БД.
type Prober struct {
	open openFunc
}

// New создаёт Prober.
func New() *Prober {
	return &Prober{open: sql.Open}
}

// Ping подключается к БД с параметрами p и выполняет ping в пределах ctx.
func (p *Prober) Ping(ctx context.Context, params models.ConnectionParams) error {
	const op = "dbprobe.Ping"

	driver, dsn, err := DSN(params, dialTimeout(ctx))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	db, err := p.open(driver, dsn)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	return nil
}

// DSN строит имя драйвера и строку подключения для типа БД.
func DSN(p models.ConnectionParams, timeout time.Duration) (driver, dsn string, err error) {
	hostPort := net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	seconds := strconv.Itoa(int(timeout.Round(time.Second) / time.Second))
	if seconds == "0" {
		seconds = "1"
	}

	switch strings.ToLower(p.DBType) {
	case "postgresql", "postgres":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(p.Username, p.Password),
			Host:     hostPort,
			Path:     "/" + p.DBName,
			RawQuery: url.Values{"connect_timeout": {seconds}}.Encode(),
		}
		return driverPostgres, u.String(), nil

	case "mysql":
		cfg := mysql.NewConfig()
		cfg.User = p.Username
		cfg.Passwd = p.Password
		cfg.Net = "tcp"
		cfg.Addr = hostPort
		cfg.DBName = p.DBName
		cfg.Timeout = timeout
		return driverMySQL, cfg.FormatDSN(), nil

	case "mssql", "sqlserver":
		u := url.URL{
			Scheme: "sqlserver",
			User:   url.UserPassword(p.Username, p.Password),
			Host:   hostPort,
			RawQuery: url.Values{
				"database":     {p.DBName},
				"dial timeout": {seconds},
			}.Encode(),
		}
		return driverMSSQL, u.String(), nil

	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupported, p.DBType)
	}
}

func dialTimeout(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return defaultDialTimeout
	}

	if d := time.Until(deadline); d > 0 {
		return d
	}

	return time.Second
}
