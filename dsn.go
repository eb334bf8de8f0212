package dbmanager

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const redactedPassword = "xxxxx"

// DSN holds the parsed properties of a data source name:
//
//	protocol://[user[:password]@][host[:port]][/database][?key=value&...]
//
// File based protocols leave the host empty and keep the file path in
// Database, so "sqlite:///app.db" is relative and "sqlite:////var/app.db" is
// absolute.
type DSN struct {
	Protocol string
	Username string
	Password string
	Host     string
	Port     int
	Database string
	Params   url.Values
}

// ParseDSN parses s into a DSN. The returned error wraps ErrInvalidInput and
// never contains the password.
func ParseDSN(s string) (DSN, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DSN{}, fmt.Errorf("parse dsn: empty string: %w", ErrInvalidInput)
	}

	u, err := url.Parse(s)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return DSN{}, fmt.Errorf("parse dsn: %w: %s", ErrInvalidInput, err.Error())
	}

	if u.Scheme == "" {
		return DSN{}, fmt.Errorf("parse dsn: missing protocol: %w", ErrInvalidInput)
	}

	if !IsValidName(u.Scheme) {
		return DSN{}, fmt.Errorf("parse dsn: invalid protocol %q: %w", u.Scheme, ErrInvalidInput)
	}

	if u.Opaque != "" {
		return DSN{}, fmt.Errorf("parse dsn: expected %s://...: %w", u.Scheme, ErrInvalidInput)
	}

	dsn := DSN{
		Protocol: u.Scheme,
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
	}

	if u.User != nil {
		dsn.Username = u.User.Username()
		dsn.Password, _ = u.User.Password()
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return DSN{}, fmt.Errorf("parse dsn: invalid port %q: %w", p, ErrInvalidInput)
		}
		dsn.Port = port
	}

	if u.RawQuery != "" {
		params, err := url.ParseQuery(u.RawQuery)
		if err != nil {
			return DSN{}, fmt.Errorf("parse dsn: invalid options: %w", ErrInvalidInput)
		}
		dsn.Params = params
	}

	if dsn.Host == "" && dsn.Database == "" {
		return DSN{}, fmt.Errorf("parse dsn: missing host and database: %w", ErrInvalidInput)
	}

	return dsn, nil
}

// MustParseDSN is like ParseDSN but panics on error. Intended for tests and
// package level literals.
func MustParseDSN(s string) DSN {
	dsn, err := ParseDSN(s)
	if err != nil {
		panic(err)
	}
	return dsn
}

// String returns the canonical form of the DSN. Options are sorted by key.
func (d DSN) String() string {
	return d.format(d.Password)
}

// Redacted is like String but replaces a non-empty password with "xxxxx".
func (d DSN) Redacted() string {
	if d.Password == "" {
		return d.String()
	}
	return d.format(redactedPassword)
}

func (d DSN) format(password string) string {
	var b strings.Builder

	b.WriteString(d.Protocol)
	b.WriteString("://")

	if d.Username != "" || password != "" {
		if password != "" {
			b.WriteString(url.UserPassword(d.Username, password).String())
		} else {
			b.WriteString(url.User(d.Username).String())
		}
		b.WriteByte('@')
	}

	b.WriteString(d.hostPort())

	if d.Database != "" {
		b.WriteByte('/')
		b.WriteString((&url.URL{Path: d.Database}).EscapedPath())
	}

	if len(d.Params) > 0 {
		b.WriteByte('?')
		b.WriteString(d.Params.Encode())
	}

	return b.String()
}

func (d DSN) hostPort() string {
	if d.Port > 0 {
		return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	}
	if strings.Contains(d.Host, ":") {
		return "[" + d.Host + "]"
	}
	return d.Host
}

// DriverDSN converts the DSN into the connection string understood by the
// database/sql driver registered under driver.
func (d DSN) DriverDSN(driver string) (string, error) {
	switch driver {
	case "sqlite", "sqlite3":
		if d.Database == "" {
			return "", fmt.Errorf("driver dsn %s: missing database file (use %s:///path.db): %w", driver, d.Protocol, ErrInvalidInput)
		}
		if len(d.Params) == 0 {
			return d.Database, nil
		}
		return d.Database + "?" + d.Params.Encode(), nil

	case "postgres", "pgx":
		pg := d
		pg.Protocol = "postgres"
		return pg.String(), nil

	case "mysql":
		cfg := mysql.NewConfig()
		cfg.User = d.Username
		cfg.Passwd = d.Password
		cfg.DBName = d.Database
		if d.Host != "" {
			port := d.Port
			if port == 0 {
				port = 3306
			}
			cfg.Net = "tcp"
			cfg.Addr = net.JoinHostPort(d.Host, strconv.Itoa(port))
		}
		if len(d.Params) > 0 {
			cfg.Params = make(map[string]string, len(d.Params))
			for k := range d.Params {
				cfg.Params[k] = d.Params.Get(k)
			}
		}
		return cfg.FormatDSN(), nil

	case "godror":
		connect := d.hostPort()
		if d.Database != "" {
			connect += "/" + d.Database
		}
		return fmt.Sprintf("user=%s password=%s connectString=%s",
			strconv.Quote(d.Username), strconv.Quote(d.Password), strconv.Quote(connect)), nil

	default:
		return d.String(), nil
	}
}
