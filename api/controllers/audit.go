package controllers

import (
	"context"
	"net/http"

	"github.com/campustrade/campustrade-backend/api/responses"
	"github.com/campustrade/campustrade-backend/api/validators"
	"github.com/campustrade/campustrade-backend/pkg/db/models"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/logger"
)

type auditLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// AuditRecent returns the newest audit entries. Mounted outside prod only.
func AuditRecent(repo auditLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := repo.ListRecent(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing audit entries"))
			return
		}

		responses.WriteSuccess(w, entries)
	}
}
