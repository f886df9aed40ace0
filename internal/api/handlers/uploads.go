package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"golang.org/x/sync/errgroup"

	"route-assignment-service/internal/services"
)

const (
	maxUploadBytes = 32 << 20
	// Concurrent manifest files read per request.
	manifestReadLimit = 4
)

type UploadHandler struct {
	Registry *services.CycleRegistry
}

type ingestFunc func(c *services.Cycle, ctx context.Context, in services.Upload) (services.IngestResult, error)

func (h *UploadHandler) RoutePlan(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, (*services.Cycle).IngestRoutePlan)
}

func (h *UploadHandler) Fleet(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, (*services.Cycle).IngestFleet)
}

func (h *UploadHandler) DriverAssignments(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, (*services.Cycle).IngestDriverAssignments)
}

// single ingests the multipart field "file". Row problems are reported in
// the response body with a 200; only unusable requests fail.
func (h *UploadHandler) single(w http.ResponseWriter, r *http.Request, ingest ingestFunc) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	c, ok := cycleFor(w, r, h.Registry)
	if !ok {
		return
	}
	files, ok := formFiles(w, r, "file")
	if !ok {
		return
	}

	up, err := readUpload(files[0])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := ingest(c, r.Context(), up)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toIngest(res))
}

// LoadManifests ingests every part of the multipart field "files" as one batch.
func (h *UploadHandler) LoadManifests(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	c, ok := cycleFor(w, r, h.Registry)
	if !ok {
		return
	}
	files, ok := formFiles(w, r, "files")
	if !ok {
		return
	}

	uploads := make([]services.Upload, len(files))
	var g errgroup.Group
	g.SetLimit(manifestReadLimit)
	for i, fh := range files {
		i, fh := i, fh
		g.Go(func() error {
			up, err := readUpload(fh)
			if err != nil {
				return err
			}
			uploads[i] = up
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := c.IngestLoadManifests(r.Context(), uploads)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toIngest(res))
}

func formFiles(w http.ResponseWriter, r *http.Request, field string) ([]*multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return nil, false
	}

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("multipart field %q is required", field))
		return nil, false
	}
	return files, true
}

func readUpload(fh *multipart.FileHeader) (services.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return services.Upload{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.Upload{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return services.Upload{Name: fh.Filename, Data: data}, nil
}
