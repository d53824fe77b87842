package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// CSV upload
// ============================================================

type uploadResponse struct {
	Result     *domain.UploadResult     `json:"result"`
	Dashboard  *service.State           `json:"dashboard,omitempty"`
	Onboarding *domain.OnboardingRecord `json:"onboarding,omitempty"`
}

// formFile extracts the "file" part, enforcing maxBytes on the whole body.
func formFile(w http.ResponseWriter, r *http.Request, maxBytes int64, logger *zap.Logger) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleServiceError(w, err, logger)
			return nil, nil, false
		}
		writeError(w, http.StatusBadRequest, "expected a multipart form with a 'file' field")
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handleServiceError(w, &domain.ErrValidation{Field: "file", Message: "No file selected!"}, logger)
		return nil, nil, false
	}
	return file, header, true
}

func uploadHandler(dash *service.Dashboard, maxBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/upload")
		defer span.End()

		file, header, ok := formFile(w, r, maxBytes, logger)
		if !ok {
			return
		}
		defer file.Close()

		res, err := dash.Upload(ctx, header.Filename, file)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		st := dash.State()
		writeJSON(w, http.StatusOK, uploadResponse{Result: res, Dashboard: &st})
	}
}

func onboardingUploadHandler(ob *service.Onboarding, maxBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/onboarding/upload")
		defer span.End()

		file, header, ok := formFile(w, r, maxBytes, logger)
		if !ok {
			return
		}
		defer file.Close()

		res, rec, err := ob.Upload(ctx, header.Filename, file)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, uploadResponse{Result: res, Onboarding: &rec})
	}
}
