package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leadflowhq/leadflow-backend/api/middleware"
	"github.com/leadflowhq/leadflow-backend/api/responses"
	"github.com/leadflowhq/leadflow-backend/api/validators"
	"github.com/leadflowhq/leadflow-backend/internal/leads"
	pkgerrors "github.com/leadflowhq/leadflow-backend/pkg/errors"
	"github.com/leadflowhq/leadflow-backend/pkg/logger"
)

type importRequest struct {
	Rows []leads.LeadPayload `json:"rows"`
}

type validateImportRequest struct {
	CSV string `json:"csv" validate:"required"`
}

func readBody(r *http.Request, limit int64) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "failed to read request body")
	}
	return string(raw), nil
}

func ownerFromContext(r *http.Request) (string, error) {
	ownerID := middleware.UserIDFromContext(r.Context())
	if ownerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "user context missing")
	}
	return ownerID, nil
}

func searchParamsFromQuery(r *http.Request) leads.SearchFilterParams {
	q := r.URL.Query()
	return leads.SearchFilterParams{
		Search:       q.Get("search"),
		City:         q.Get("city"),
		PropertyType: q.Get("propertyType"),
		Status:       q.Get("status"),
		Timeline:     q.Get("timeline"),
		Page:         q.Get("page"),
		Limit:        q.Get("limit"),
		SortBy:       q.Get("sortBy"),
		SortOrder:    q.Get("sortOrder"),
	}
}

// BuyerCreate captures a single lead.
func BuyerCreate(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leads service unavailable"))
			return
		}

		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload leads.LeadPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Create(ctx, ownerID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithBuyerID(ctx, dto.ID), "buyer.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// BuyerDetail returns a record plus its recent change trail.
func BuyerDetail(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leads service unavailable"))
			return
		}

		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		buyerID := chi.URLParam(r, "buyerId")
		dto, err := svc.Get(ctx, ownerID, buyerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// BuyerUpdate applies a partial update guarded by the updatedAt watermark.
func BuyerUpdate(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leads service unavailable"))
			return
		}

		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload leads.LeadUpdatePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		buyerID := chi.URLParam(r, "buyerId")
		dto, err := svc.Update(ctx, ownerID, buyerID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithBuyerID(ctx, buyerID), "buyer.updated")
		}
		responses.WriteSuccess(w, dto)
	}
}

// BuyerDelete removes a record and its trail.
func BuyerDelete(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leads service unavailable"))
			return
		}

		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		buyerID := chi.URLParam(r, "buyerId")
		if err := svc.Delete(ctx, ownerID, buyerID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithBuyerID(ctx, buyerID), "buyer.deleted")
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// BuyerList searches and pages an owner's records.
func BuyerList(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leads service unavailable"))
			return
		}

		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.Search(ctx, ownerID, searchParamsFromQuery(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// BuyerExport streams the filtered set as a CSV attachment.
func BuyerExport(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leads service unavailable"))
			return
		}

		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		buyers, err := svc.ExportAll(ctx, ownerID, searchParamsFromQuery(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filename := fmt.Sprintf("buyers-%s.csv", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if _, err := w.Write([]byte(leads.GenerateCSV(buyers))); err != nil && logg != nil {
			logg.Error(ctx, "buyer.export.write", err)
		}
	}
}

// BuyerImport inserts raw payload rows, partitioning the batch into
// successes, duplicates, and failures.
func BuyerImport(svc leads.Service, maxRows int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leads service unavailable"))
			return
		}

		ownerID, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload importRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if len(payload.Rows) == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "rows must not be empty"))
			return
		}
		if maxRows > 0 && len(payload.Rows) > maxRows {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("Cannot import more than %d rows at once", maxRows)))
			return
		}

		result, err := svc.BulkImport(ctx, ownerID, payload.Rows)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{
				"imported":   result.Imported,
				"failed":     result.Failed,
				"duplicates": result.Duplicates,
			})
			logg.Info(ctx, "buyer.import.complete")
		}
		responses.WriteSuccess(w, result)
	}
}

// BuyerImportValidate dry-runs a CSV file: parse, validate every row, and
// report what an import would do without writing anything.
func BuyerImportValidate(maxRows int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		content := ""
		contentType := r.Header.Get("Content-Type")
		if strings.HasPrefix(contentType, "text/csv") || strings.HasPrefix(contentType, "text/plain") {
			raw, err := readBody(r, 4<<20)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			content = raw
		} else {
			var payload validateImportRequest
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			content = payload.CSV
		}

		rows := leads.ParseCSV(content)
		if maxRows > 0 && len(rows) > maxRows {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("Cannot import more than %d rows at once", maxRows)))
			return
		}

		result := leads.ValidateCSVRows(rows)
		responses.WriteSuccess(w, map[string]any{
			"success":  len(result.Errors) == 0,
			"imported": len(result.Valid),
			"errors":   result.Errors,
		})
	}
}
