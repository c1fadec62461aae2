package dsn

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Params describes a Postgres connection in key/value form.
type Params struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// FromEnv builds a Postgres DSN from DB_HOST, DB_PORT, DB_USER, DB_PASS, DB_NAME
// and DB_SSLMODE. It returns "" when DB_HOST is unset.
func FromEnv() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}

	p := Params{
		Host:     host,
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASS"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		fmt.Sscanf(port, "%d", &p.Port)
	}
	return Build(p)
}

// Build renders p as a libpq key/value string. Empty fields are omitted,
// except sslmode which defaults to disable.
func Build(p Params) string {
	parts := make([]string, 0, 6)
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+quote(v))
		}
	}

	add("host", p.Host)
	if p.Port > 0 {
		add("port", fmt.Sprint(p.Port))
	}
	add("user", p.User)
	add("password", p.Password)
	add("dbname", p.Name)

	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	add("sslmode", sslMode)

	return strings.Join(parts, " ")
}

func quote(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

const sqliteBusyTimeoutMS = "10000"

// SQLite turns a database path into a go-sqlite3 URI whose write transactions
// take the write lock at BEGIN and wait for it instead of failing. Options
// already present in path are kept.
func SQLite(path string) string {
	base, rawQuery, _ := strings.Cut(strings.TrimPrefix(path, "file:"), "?")
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		q = url.Values{}
	}
	if q.Get("_busy_timeout") == "" {
		q.Set("_busy_timeout", sqliteBusyTimeoutMS)
	}
	if q.Get("_txlock") == "" {
		q.Set("_txlock", "immediate")
	}
	return "file:" + base + "?" + q.Encode()
}
