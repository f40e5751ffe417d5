package handler

import (
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// pathID parses a uuid path parameter
func pathID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUID parses an optional uuid field. Nil or blank means absent.
func optionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// optionalDate parses an optional YYYY-MM-DD field. Nil or blank means absent.
func optionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := util.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := util.FormatDate(*t)
	return &s
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
