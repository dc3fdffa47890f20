// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/entrypoint/dto"
	"github.com/savings-circle/backend/internal/integration/entrypoint/middleware"
)

// statusForKind maps the error taxonomy onto HTTP status codes.
func statusForKind(kind domainerror.Kind) int {
	switch kind {
	case domainerror.KindUnauthenticated:
		return http.StatusUnauthorized
	case domainerror.KindPermissionDenied:
		return http.StatusForbidden
	case domainerror.KindInvalidArgument:
		return http.StatusBadRequest
	case domainerror.KindNotFound:
		return http.StatusNotFound
	case domainerror.KindFailedPrecondition:
		return http.StatusConflict
	case domainerror.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Uncoded errors are logged and reported
// as a generic internal error.
func respondError(ctx *gin.Context, err error) {
	kind := domainerror.KindOf(err)
	status := statusForKind(kind)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(ctx.Request.Context(), "request failed",
			"route", ctx.FullPath(),
			"error", err,
		)
	}
	ctx.JSON(status, dto.ErrorResponse{
		Error: domainerror.MessageOf(err),
		Code:  domainerror.CodeOf(err),
	})
}

// requirePrincipal returns the authenticated caller or writes a 401.
func requirePrincipal(ctx *gin.Context) (entity.Principal, bool) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingCaller),
		})
		return entity.Principal{}, false
	}
	return principal, true
}

// groupIDParam parses the :id path parameter or writes a 400.
func groupIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		respondError(ctx, domainerror.NewGroupError(domainerror.ErrCodeInvalidGroupID, "invalid group id", err))
		return uuid.Nil, false
	}
	return id, true
}

// transactionIDParam parses a transaction id path parameter or writes a 400.
func transactionIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		respondError(ctx, domainerror.NewLedgerError(domainerror.ErrCodeInvalidTransactionID, "invalid transaction id", err))
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def when absent or malformed.
func queryInt(ctx *gin.Context, name string, def int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
