package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeMizoo/bygagoos-api/internal/repository"
)

func newSettingsHandler(t *testing.T) (*SettingsHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSettingsHandler(repository.NewSettingsRepo(db)), mock
}

func TestGetProfile_SnakeCaseBody(t *testing.T) {
	h, mock := newSettingsHandler(t)
	e := echo.New()
	e.GET("/settings/profile", h.GetProfile)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id,name,address,phone,email,updated_at FROM company_profile LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "phone", "email", "updated_at"}).
			AddRow(1, "ByGagoos", "Lot II Antananarivo", "+261 34 00 000 00", "atelier@bygagoos.mg", time.Now()))

	rec := getPath(e, "/settings/profile")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"name":"ByGagoos"`)
	assert.Contains(t, body, `"updated_at"`)
	assert.NotContains(t, body, `"Name"`)
	assert.NotContains(t, body, `"UpdatedAt"`)
	require.NoError(t, mock.ExpectationsWereMet())
}
