package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalog/vitalog/pkg/api"
)

func photoRequest(t *testing.T, mealID, fileName string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/meals/"+mealID+"/photo", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetPathValue("id", mealID)
	return asDevice(req, "device-1")
}

func TestPhotoUpload(t *testing.T) {
	store := newTestStorage(t)
	provisionDevice(t, store, "device-1")
	records := NewRecordsHandler(testLogger(), store)

	uploadDir := t.TempDir()
	photos := NewPhotoHandler(testLogger(), store, uploadDir)

	_, code := postMeal(t, records, "device-1", api.Meal{
		ID:       "meal-1",
		Name:     "Lunch",
		Date:     "2026-02-10",
		Calories: 450,
	})
	require.Equal(t, http.StatusCreated, code)

	content := []byte("fake jpeg bytes")
	rec := httptest.NewRecorder()
	photos.Upload(rec, photoRequest(t, "meal-1", "lunch.jpg", content))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "/static/meal-1.jpg", resp.PhotoURL)

	written, err := os.ReadFile(filepath.Join(uploadDir, "meal-1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, content, written)

	meals := listMeals(t, records, "device-1", "2026-02-10")
	require.Len(t, meals, 1)
	assert.Equal(t, "/static/meal-1.jpg", meals[0].PhotoURL)
}

func TestPhotoUpload_MealNotFound(t *testing.T) {
	store := newTestStorage(t)
	provisionDevice(t, store, "device-1")
	photos := NewPhotoHandler(testLogger(), store, t.TempDir())

	rec := httptest.NewRecorder()
	photos.Upload(rec, photoRequest(t, "ghost", "lunch.jpg", []byte("x")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPhotoUpload_RejectsUnsupportedFormat(t *testing.T) {
	store := newTestStorage(t)
	provisionDevice(t, store, "device-1")
	records := NewRecordsHandler(testLogger(), store)
	photos := NewPhotoHandler(testLogger(), store, t.TempDir())

	_, code := postMeal(t, records, "device-1", api.Meal{
		ID:       "meal-1",
		Name:     "Lunch",
		Date:     "2026-02-10",
		Calories: 450,
	})
	require.Equal(t, http.StatusCreated, code)

	rec := httptest.NewRecorder()
	photos.Upload(rec, photoRequest(t, "meal-1", "lunch.gif", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
