// internal/handler/transfer_handler.go
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/crm-backend/internal/errors"
	"github.com/unclebandit/crm-backend/internal/service"
	"github.com/unclebandit/crm-backend/internal/spreadsheet"
)

const maxUploadSize = 10 << 20

// TransferHandler serves spreadsheet import and export of customers.
type TransferHandler struct {
	Store *service.CustomerStore
	Log   *zap.Logger
	Now   func() time.Time
}

func NewTransferHandler(store *service.CustomerStore, log *zap.Logger) *TransferHandler {
	return &TransferHandler{Store: store, Log: log, Now: time.Now}
}

// ImportCustomers merges the rows of the uploaded "file" field. The whole
// file is parsed before anything is merged.
func (h *TransferHandler) ImportCustomers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	format, err := spreadsheet.DetectFormat(header.Filename)
	if err != nil {
		h.fail(w, &appErrors.ImportError{Err: err})
		return
	}
	rows, err := spreadsheet.ReadRows(file, format)
	if err != nil {
		h.fail(w, &appErrors.ImportError{Err: err})
		return
	}

	imported, err := h.Store.ImportBatch(r.Context(), rows)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Log.Info("imported customers", zap.String("file", header.Filename), zap.Int("count", len(imported)))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"imported": len(imported),
		"message":  "Successfully imported " + strconv.Itoa(len(imported)) + " customers",
	})
}

// ExportCustomers writes the selected customers (ids=1,2,...) or all of them
// as an attachment.
func (h *TransferHandler) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	ids, err := ParseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ids")
		return
	}
	format, err := spreadsheet.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, h.Store.ExportSelection(ids), format); err != nil {
		h.Log.Error("export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	contentType := "text/csv"
	if format == spreadsheet.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+spreadsheet.ExportFileName(h.Now(), format)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *TransferHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appErrors.ErrEmptyImport):
		writeError(w, http.StatusBadRequest, "File is empty")
	case appErrors.IsImport(err):
		h.Log.Info("import rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error("import failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ParseIDs reads a comma separated id list such as "1,2,3".
func ParseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
