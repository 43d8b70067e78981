package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/loquihq/loqui/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "loqui",
		Password: "pw",
		Database: "loqui",
		SSLMode:  "require",
	}
	want := "postgres://loqui:pw@db.internal:5433/loqui?sslmode=require"
	if got := DSN(cfg); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestTextHelpers(t *testing.T) {
	if got := TextToString(pgtype.Text{}); got != "" {
		t.Errorf("TextToString(null) = %q", got)
	}
	if got := TextToString(pgtype.Text{String: "general", Valid: true}); got != "general" {
		t.Errorf("TextToString = %q", got)
	}
	if TextFromString("").Valid {
		t.Error("TextFromString(\"\") should be NULL")
	}
	if v := TextFromString("general"); !v.Valid || v.String != "general" {
		t.Errorf("TextFromString = %+v", v)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("expected 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation should not match")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Error("plain error should not match")
	}
}
