package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opensite/api/internal/model"
)

func startUpload(t *testing.T, s *Store, projectID uint) *model.Document {
	t.Helper()
	doc, err := s.InitiateUpload(pmID, projectID, "site-survey.pdf", "application/pdf", 1<<20)
	require.NoError(t, err)
	return doc
}

func TestUploadStartsUploading(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	doc := startUpload(t, s, p.ID)

	assert.Equal(t, model.DocumentUploading, doc.Status)
	assert.NotEmpty(t, doc.UploadTaskID)
	assert.Zero(t, doc.UploadProgress)
}

func TestUploadProgressMovesToScanning(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	doc := startUpload(t, s, p.ID)

	doc, err := s.UploadProgress(doc.UploadTaskID, 40)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentUploading, doc.Status)
	assert.Equal(t, 40, doc.UploadProgress)

	// Out-of-order chunk reports never move progress backwards.
	doc, err = s.UploadProgress(doc.UploadTaskID, 25)
	require.NoError(t, err)
	assert.Equal(t, 40, doc.UploadProgress)

	doc, err = s.UploadProgress(doc.UploadTaskID, 100)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentScanning, doc.Status)
}

func TestFinalizeApprovesAndIndexes(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	doc := startUpload(t, s, p.ID)
	_, err := s.UploadProgress(doc.UploadTaskID, 100)
	require.NoError(t, err)

	doc, err = s.FinalizeUpload(pmID, doc.UploadTaskID, true, "load-bearing wall survey, rev 3")
	require.NoError(t, err)
	assert.Equal(t, model.DocumentApproved, doc.Status)

	found, err := s.SearchDocuments(pmID, "load-bearing")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, doc.ID, found[0].ID)
}

func TestFinalizeQuarantines(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	doc := startUpload(t, s, p.ID)
	_, err := s.UploadProgress(doc.UploadTaskID, 100)
	require.NoError(t, err)

	doc, err = s.FinalizeUpload(pmID, doc.UploadTaskID, false, "")
	require.NoError(t, err)
	assert.Equal(t, model.DocumentQuarantined, doc.Status)

	// Quarantined documents are invisible to search.
	found, err := s.SearchDocuments(pmID, "survey")
	require.NoError(t, err)
	assert.Empty(t, found)
}

// A finalized document can never be pushed back into the upload flow.
func TestDocumentNeverReturnsToUploading(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	doc := startUpload(t, s, p.ID)
	_, err := s.UploadProgress(doc.UploadTaskID, 100)
	require.NoError(t, err)
	_, err = s.FinalizeUpload(pmID, doc.UploadTaskID, true, "")
	require.NoError(t, err)

	_, err = s.UploadProgress(doc.UploadTaskID, 10)
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))

	_, err = s.FinalizeUpload(pmID, doc.UploadTaskID, true, "")
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))
}

func TestFinalizeRequiresScanning(t *testing.T) {
	s := newTestStore(t)
	p := activeProject(t, s)
	doc := startUpload(t, s, p.ID)

	_, err := s.FinalizeUpload(pmID, doc.UploadTaskID, true, "")
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))
}
