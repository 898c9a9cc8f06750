// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/docket-dev/docket/db"
	"github.com/docket-dev/docket/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var dbCounter atomic.Int64

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:docket_test_%d?mode=memory&cache=shared", dbCounter.Add(1))

	conn, err := db.Open(db.DriverSQLite, dsn)
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close(conn) })

	require.NoError(t, db.MigrateDatabase(conn, db.DriverSQLite))

	return conn
}

func CreateUser(t *testing.T, conn *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Name: "Test User", Email: email, AvatarURL: "https://i.pravatar.cc/150"}
	require.NoError(t, conn.Create(user).Error)

	return user
}

func CreateClient(t *testing.T, conn *gorm.DB, ownerID string) *models.Client {
	t.Helper()

	client := &models.Client{
		Name:        "Acme Holdings",
		ContactInfo: datatypes.NewJSONType(models.ContactInfo{Email: "legal@acme.test", Phone: "+15551234567"}),
		OwnerID:     ownerID,
	}
	require.NoError(t, conn.Create(client).Error)

	return client
}

func CreateCase(t *testing.T, conn *gorm.DB, ownerID, clientID string) *models.Case {
	t.Helper()

	c := &models.Case{
		Title:       "Acme v. Globex",
		Description: "Breach of supply contract",
		Status:      models.CaseOpen,
		OwnerID:     ownerID,
		ClientID:    clientID,
	}
	require.NoError(t, conn.Create(c).Error)

	return c
}
