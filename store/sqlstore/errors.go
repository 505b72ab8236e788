package sqlstore

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/warp/leave-service/leave"
)

// PostgreSQL SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

// translate maps driver constraint failures onto leave error kinds.
// Anything else is returned unchanged.
func translate(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return leave.NewError(leave.ErrConflict, "Duplicate field value entered", err)
		case sqlite3.ErrConstraintForeignKey:
			return leave.NewError(leave.ErrValidation, "Invalid reference to related resource", err)
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return leave.NewError(leave.ErrValidation, "Invalid input value", err)
		}
		return err
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		switch string(pgErr.Code) {
		case pgUniqueViolation:
			return leave.NewError(leave.ErrConflict, "Duplicate field value entered", err)
		case pgForeignKeyViolation:
			return leave.NewError(leave.ErrValidation, "Invalid reference to related resource", err)
		case pgNotNullViolation, pgCheckViolation, pgInvalidText:
			return leave.NewError(leave.ErrValidation, "Invalid input value", err)
		}
	}
	return err
}
