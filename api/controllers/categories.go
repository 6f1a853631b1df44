package controllers

import (
	"context"
	"net/http"

	"github.com/campustrade/campustrade-backend/api/responses"
	"github.com/campustrade/campustrade-backend/pkg/db/models"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/logger"
)

type categoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// CategoryList returns the fixed category tree for browse filters.
func CategoryList(repo categoryLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category repository unavailable"))
			return
		}

		categories, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories"))
			return
		}

		responses.WriteSuccess(w, categories)
	}
}
