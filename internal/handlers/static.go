package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/Riwi-io-Medellin/SQL/internal/static"
)

type StaticHandler struct {
	Root *static.Root
}

// ServeFile answers any GET not claimed by the API with a file from the
// public root, or 404 when it is missing or outside the root.
func (h *StaticHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	path, err := h.Root.Resolve(r.URL.Path)
	if err != nil {
		JSONError(w, "file not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		JSONError(w, "file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		JSONError(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", static.ContentType(path))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		slog.WarnContext(r.Context(), "static write failed", "path", r.URL.Path, "err", err)
	}
}
