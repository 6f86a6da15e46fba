package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/crm-backend/internal/handler"
	"github.com/unclebandit/crm-backend/internal/repository"
	"github.com/unclebandit/crm-backend/internal/service"
	"github.com/unclebandit/crm-backend/internal/spreadsheet"
	"github.com/unclebandit/crm-backend/internal/storage"
)

func newHandler(t *testing.T) (*handler.TransferHandler, *service.CustomerStore) {
	t.Helper()
	store := service.NewCustomerStore(
		repository.NewCustomerRepository(storage.NewMemoryBackend(), "crm-users"), nil, zap.NewNop())
	require.NoError(t, store.Load(context.Background()))

	h := handler.NewTransferHandler(store, zap.NewNop())
	h.Now = func() time.Time { return time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC) }
	return h, store
}

func upload(t *testing.T, h http.HandlerFunc, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/customers/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestImportCSV(t *testing.T) {
	h, store := newHandler(t)

	csv := "Full Name,Email Address,Deal Size\nRow Two,two@example.com,750\nRow Three,three@example.com,\n"
	w := upload(t, h.ImportCustomers, "leads.csv", []byte(csv))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, 2.0, res["imported"])
	assert.Equal(t, "Successfully imported 2 customers", res["message"])

	list := store.List()
	require.Len(t, list, 4)
	assert.Equal(t, "Row Two", list[2].Name)
	assert.Equal(t, 750.0, list[2].Value)
}

func TestImportRejectsBadFiles(t *testing.T) {
	h, store := newHandler(t)

	tests := []struct {
		name, file, content, wantErr string
	}{
		{"header only", "empty.csv", "Name,Email\n", "File is empty"},
		{"not a workbook", "broken.xlsx", "definitely not a zip", "Import failed: "},
		{"unsupported type", "picture.png", "x", "Import failed: "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := upload(t, h.ImportCustomers, tc.file, []byte(tc.content))
			require.Equal(t, http.StatusBadRequest, w.Code)
			var res map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
			assert.Contains(t, res["error"], tc.wantErr)
		})
	}
	assert.Equal(t, 2, store.Len(), "nothing merged")
}

func TestImportMissingFile(t *testing.T) {
	h, _ := newHandler(t)
	req := httptest.NewRequest("POST", "/customers/import", nil)
	w := httptest.NewRecorder()
	h.ImportCustomers(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportXLSXThenReimport(t *testing.T) {
	h, store := newHandler(t)

	req := httptest.NewRequest("GET", "/customers/export?ids=2", nil)
	w := httptest.NewRecorder()
	h.ExportCustomers(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="customers_export_2024-02-29.xlsx"`, w.Header().Get("Content-Disposition"))

	rows, err := spreadsheet.ReadRows(bytes.NewReader(w.Body.Bytes()), spreadsheet.FormatXLSX)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Smith", rows[0]["Name"])
	assert.Equal(t, "Referral", rows[0]["Source"])

	w = upload(t, h.ImportCustomers, "back.xlsx", w.Body.Bytes())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, "Jane Smith", list[2].Name)
	assert.Equal(t, list[1].LastContact, list[2].LastContact)
	assert.Equal(t, list[1].Value, list[2].Value)
	assert.NotEqual(t, list[1].ID, list[2].ID)
}

func TestExportCSVAll(t *testing.T) {
	h, _ := newHandler(t)

	req := httptest.NewRequest("GET", "/customers/export?format=csv", nil)
	w := httptest.NewRecorder()
	h.ExportCustomers(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	rows, err := spreadsheet.ReadRows(w.Body, spreadsheet.FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "John Doe", rows[0]["Name"])
	assert.Equal(t, "2023-05-15T10:30:00Z", rows[0]["Created At"])
}

func TestExportBadParams(t *testing.T) {
	h, _ := newHandler(t)
	for _, target := range []string{"/customers/export?ids=1,x", "/customers/export?format=pdf"} {
		w := httptest.NewRecorder()
		h.ExportCustomers(w, httptest.NewRequest("GET", target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := handler.ParseIDs(" 1, 2,,3 ")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = handler.ParseIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
