package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/logging"
	"github.com/docket-dev/docket/internal/models"
	"github.com/docket-dev/docket/internal/storage"
	"github.com/docket-dev/docket/internal/store"
	"github.com/docket-dev/docket/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStorage is an in-memory ObjectStorage.
type memoryStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleteErr error
	seq       int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Put(_ context.Context, in storage.PutInput) (*storage.Object, error) {
	if err := storage.CheckAllowed(in.FileName); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	handle := fmt.Sprintf("%s/%d-%s", in.Folder, m.seq, in.FileName)
	m.objects[handle] = data

	return &storage.Object{URL: "https://cdn.test/" + handle, Handle: handle}, nil
}

func (m *memoryStorage) Delete(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}

	if _, ok := m.objects[handle]; !ok {
		return storage.ErrNotFound
	}

	delete(m.objects, handle)
	return nil
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type failingRecords struct {
	FileRecords
}

func (failingRecords) Create(context.Context, *models.File) error {
	return errors.New("disk full")
}

type env struct {
	svc     *FileService
	objects *memoryStorage
	records *store.FileStore
	ownerID string
	caseID  string
}

func newEnv(t *testing.T) env {
	t.Helper()

	conn := testutil.NewDB(t)
	owner := testutil.CreateUser(t, conn, "owner@example.com")
	client := testutil.CreateClient(t, conn, owner.ID)
	kase := testutil.CreateCase(t, conn, owner.ID, client.ID)

	objects := newMemoryStorage()
	records := store.NewFileStore(conn)

	return env{
		svc:     NewFileService(records, objects, logging.Discard()),
		objects: objects,
		records: records,
		ownerID: owner.ID,
		caseID:  kase.ID,
	}
}

var pdf = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")

func (e env) upload(t *testing.T, name string, body []byte) (*models.File, error) {
	t.Helper()

	return e.svc.Upload(context.Background(), UploadInput{
		CaseID:       e.caseID,
		OwnerID:      e.ownerID,
		FileName:     name,
		DeclaredType: "application/octet-stream",
		Size:         int64(len(body)),
		Body:         bytes.NewReader(body),
		Description:  "Signed retainer",
	})
}

func TestUploadStoresAndRecords(t *testing.T) {
	e := newEnv(t)

	f, err := e.upload(t, "retainer.pdf", pdf)
	require.NoError(t, err)

	assert.Equal(t, "retainer.pdf", f.FileName)
	assert.Equal(t, "application/pdf", f.FileType)
	assert.Equal(t, e.ownerID, f.OwnerID)
	assert.Equal(t, e.caseID, f.CaseID)
	assert.True(t, strings.HasPrefix(f.PublicID, "law_firm_app/cases/"+e.caseID+"/"))
	assert.Equal(t, pdf, e.objects.objects[f.PublicID])

	list, err := e.svc.List(context.Background(), e.caseID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUploadWithoutPayload(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Upload(context.Background(), UploadInput{CaseID: e.caseID, OwnerID: e.ownerID})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.Equal(t, "No file uploaded.", apperr.From(err).Message)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	e := newEnv(t)

	_, err := e.upload(t, "setup.exe", []byte("MZ\x90\x00"))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, e.objects.count())
}

func TestUploadRejectsOversize(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Upload(context.Background(), UploadInput{
		CaseID: e.caseID, OwnerID: e.ownerID, FileName: "big.pdf",
		Size: MaxUploadSize + 1, Body: bytes.NewReader(pdf),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUploadCleansUpWhenRecordFails(t *testing.T) {
	objects := newMemoryStorage()
	svc := NewFileService(failingRecords{}, objects, logging.Discard())

	_, err := svc.Upload(context.Background(), UploadInput{
		CaseID: "c", OwnerID: "o", FileName: "a.pdf", Size: int64(len(pdf)), Body: bytes.NewReader(pdf),
	})
	require.Error(t, err)
	assert.Zero(t, objects.count())
}

func TestDeleteRemovesObjectAndRecord(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f, err := e.upload(t, "retainer.pdf", pdf)
	require.NoError(t, err)

	require.NoError(t, e.svc.Delete(ctx, e.caseID, f.ID, e.ownerID))
	assert.Zero(t, e.objects.count())

	_, err = e.svc.Get(ctx, e.caseID, f.ID, e.ownerID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = e.svc.Delete(ctx, e.caseID, f.ID, e.ownerID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteToleratesMissingObject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f, err := e.upload(t, "photo.png", []byte("\x89PNG\r\n\x1a\n0000"))
	require.NoError(t, err)

	delete(e.objects.objects, f.PublicID)

	require.NoError(t, e.svc.Delete(ctx, e.caseID, f.ID, e.ownerID))
}

func TestDeleteKeepsRecordWhenStorageFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f, err := e.upload(t, "retainer.pdf", pdf)
	require.NoError(t, err)

	e.objects.deleteErr = errors.New("cloudinary unavailable")

	err = e.svc.Delete(ctx, e.caseID, f.ID, e.ownerID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	_, err = e.svc.Get(ctx, e.caseID, f.ID, e.ownerID)
	assert.NoError(t, err)
}

func TestDeleteByOtherOwner(t *testing.T) {
	e := newEnv(t)

	f, err := e.upload(t, "retainer.pdf", pdf)
	require.NoError(t, err)

	err = e.svc.Delete(context.Background(), e.caseID, f.ID, "someone-else")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, 1, e.objects.count())
}

func TestConcurrentDeleteOneWins(t *testing.T) {
	e := newEnv(t)

	f, err := e.upload(t, "retainer.pdf", pdf)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = e.svc.Delete(context.Background(), e.caseID, f.ID, e.ownerID)
		}(i)
	}

	wg.Wait()

	var ok, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.Is(err, apperr.KindNotFound):
			notFound++
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, notFound)
}
