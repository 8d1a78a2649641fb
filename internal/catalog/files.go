package catalog

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"FoodZone/pkg/kit"
)

const MaxUploadBytes = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

type uploadResp struct {
	File
	URL string `json:"url"`
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+64<<10)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			kit.WriteError(w, r, http.StatusRequestEntityTooLarge, "file too large", map[string]any{"max_bytes": MaxUploadBytes})
			return
		}
		kit.WriteError(w, r, http.StatusBadRequest, "multipart form expected", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	part, hdr, err := r.FormFile("file")
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "file is required", nil)
		return
	}
	defer part.Close()

	data, err := io.ReadAll(io.LimitReader(part, MaxUploadBytes+1))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "read upload", nil)
		return
	}
	if len(data) > MaxUploadBytes {
		kit.WriteError(w, r, http.StatusRequestEntityTooLarge, "file too large", map[string]any{"max_bytes": MaxUploadBytes})
		return
	}

	ct := http.DetectContentType(data)
	if !allowedImageTypes[ct] {
		kit.WriteError(w, r, http.StatusUnsupportedMediaType, "only png, jpeg and gif images are accepted", map[string]any{"content_type": ct})
		return
	}

	if _, err := CheckImage(data); err != nil {
		if errors.Is(err, ErrImageTooLarge) {
			kit.WriteError(w, r, http.StatusUnprocessableEntity, "image too large", map[string]any{"max_pixels": MaxImagePixels})
			return
		}
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "unreadable image", nil)
		return
	}

	f := File{
		ID:          "f_" + uuid.NewString(),
		Name:        hdr.Filename,
		ContentType: ct,
		Size:        len(data),
		Data:        data,
		CreatedAt:   s.now(),
	}
	if err := s.Files.PutFile(r.Context(), f); err != nil {
		s.writeStoreError(w, r, err, "store file failed")
		return
	}

	kit.WriteJSON(w, http.StatusCreated, uploadResp{File: f, URL: "/files/" + f.ID + "/view"})
}

func (s *Server) loadFile(w http.ResponseWriter, r *http.Request) (File, bool) {
	id := chi.URLParam(r, "id")

	f, ok, err := s.Files.GetFile(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "get file failed")
		return File{}, false
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return File{}, false
	}
	return f, true
}

func (s *Server) viewFile(w http.ResponseWriter, r *http.Request) {
	f, ok := s.loadFile(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

func (s *Server) previewFile(w http.ResponseWriter, r *http.Request) {
	opts, err := previewOptions(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad preview parameters", nil)
		return
	}

	f, ok := s.loadFile(w, r)
	if !ok {
		return
	}

	out, err := RenderPreview(f.Data, opts)
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("preview failed", zap.Error(err), zap.String("file_id", f.ID))
		}
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "cannot render preview", nil)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func previewOptions(r *http.Request) (PreviewOptions, error) {
	var (
		opts PreviewOptions
		err  error
	)
	q := r.URL.Query()

	atoi := func(key string) int {
		v := q.Get(key)
		if v == "" || err != nil {
			return 0
		}
		var n int
		n, err = strconv.Atoi(v)
		return n
	}

	opts.Width = atoi("width")
	opts.Height = atoi("height")
	opts.Quality = atoi("quality")
	if err != nil {
		return PreviewOptions{}, err
	}
	return opts, opts.validate()
}
