package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Riwi-io-Medellin/SQL/internal/importer"
	"github.com/Riwi-io-Medellin/SQL/internal/metrics"
)

// uploadMemory is how much of a multipart upload is held in memory before
// spilling to temporary files.
const uploadMemory = 8 << 20

// UploadUsers creates users in bulk from a multipart "file" field holding a
// .csv or .txt file. Temporary files are removed before returning.
func (h *UserHandler) UploadUsers(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		JSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		JSONError(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	users, err := importer.Parse(header.Filename, file, h.defaultRole())
	if err != nil {
		slog.WarnContext(r.Context(), "upload rejected", "filename", header.Filename, "err", err)
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	n, err := h.Repo.CreateMany(r.Context(), users)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.AddImported(n)

	slog.InfoContext(r.Context(), "users imported", "filename", header.Filename, "count", n)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": fmt.Sprintf("%d users created", n),
		"created": n,
	})
}
