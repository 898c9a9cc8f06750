package store

import (
	"context"
	"testing"
	"time"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"github.com/docket-dev/docket/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecordLifecycle(t *testing.T) {
	conn := testutil.NewDB(t)
	files := NewFileStore(conn)
	ctx := context.Background()
	owner := testutil.CreateUser(t, conn, "owner@example.com")
	other := testutil.CreateUser(t, conn, "other@example.com")
	client := testutil.CreateClient(t, conn, owner.ID)
	c := testutil.CreateCase(t, conn, owner.ID, client.ID)

	first := &models.File{FileName: "a.pdf", FileURL: "u1", PublicID: "h1", FileType: "application/pdf", CaseID: c.ID, OwnerID: owner.ID}
	second := &models.File{FileName: "b.png", FileURL: "u2", PublicID: "h2", FileType: "image/png", CaseID: c.ID, OwnerID: owner.ID}
	require.NoError(t, files.Create(ctx, first))
	require.NoError(t, files.Create(ctx, second))
	require.NoError(t, conn.Model(first).Update("created_at", time.Now().Add(-time.Hour)).Error)

	list, err := files.ListForCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = files.FindOwned(ctx, first.ID, c.ID, other.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, files.DeleteOwned(ctx, first.ID, c.ID, owner.ID))

	err = files.DeleteOwned(ctx, first.ID, c.ID, owner.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestFilePublicIDUnique(t *testing.T) {
	conn := testutil.NewDB(t)
	files := NewFileStore(conn)
	ctx := context.Background()

	require.NoError(t, files.Create(ctx, &models.File{FileName: "a.pdf", FileURL: "u", PublicID: "same", CaseID: "c", OwnerID: "o"}))
	assert.Error(t, files.Create(ctx, &models.File{FileName: "b.pdf", FileURL: "u", PublicID: "same", CaseID: "c", OwnerID: "o"}))
}
