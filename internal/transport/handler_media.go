package transport

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/observability"
	"github.com/getcoveredlife/studio/model"
)

// uploadMedia stores a multipart upload and returns its durable URL for use
// in section payloads.
func (h *handlers) uploadMedia(w http.ResponseWriter, r *http.Request) {
	if h.deps.Uploader == nil {
		WriteError(w, model.NewInternalError())
		return
	}

	maxBytes := int64(h.deps.Config.Media.MaxSizeMB)<<20 + maxBodyBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		WriteError(w, model.NewBadRequestError("expected a multipart upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, model.NewBadRequestError("a \"file\" part is required"))
		return
	}
	defer file.Close()

	asset, err := h.deps.Uploader.Upload(header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		WriteError(w, err)
		return
	}

	observability.LoggerFrom(r.Context(), h.deps.Log).Info("media uploaded",
		zap.String("asset_id", asset.ID),
		zap.String("content_type", asset.ContentType),
		zap.Int64("size", asset.Size),
	)
	WriteJSON(w, http.StatusCreated, asset)
}
