package controllers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/campustrade/campustrade-backend/api/middleware"
	"github.com/campustrade/campustrade-backend/api/responses"
	"github.com/campustrade/campustrade-backend/internal/uploads"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/logger"
)

// UploadImage stores a multipart image and returns its served path. The body
// is capped before multipart parsing so oversized uploads fail early.
func UploadImage(store *uploads.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload store unavailable"))
			return
		}

		if middleware.UserIDFromContext(r.Context()) == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, store.MaxBytes())
		file, header, err := r.FormFile("image")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the upload size limit"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file required"))
			return
		}
		defer file.Close()

		name, err := store.Save(r.Context(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"filename": name,
			"url":      "/uploads/" + name,
		})
	}
}
