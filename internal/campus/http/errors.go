package http

import (
	"net/http"

	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/aussiebroadwan/campus/pkg/campussdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// codeFailureDescription is the only thing clients learn about a rejected
// second factor code.
const codeFailureDescription = "the code is invalid or has expired"

var kindStatus = map[service.Kind]int{
	service.KindValidation:         http.StatusBadRequest,
	service.KindNotFound:           http.StatusNotFound,
	service.KindForbidden:          http.StatusForbidden,
	service.KindAlreadyProcessed:   http.StatusConflict,
	service.KindNotConfigured:      http.StatusConflict,
	service.KindNotEnabled:         http.StatusConflict,
	service.KindAlreadyEnabled:     http.StatusConflict,
	service.KindInvalidToken:       http.StatusUnauthorized,
	service.KindAccountState:       http.StatusConflict,
	service.KindInvalidCredentials: http.StatusUnauthorized,
	service.KindConflict:           http.StatusConflict,
	service.KindPersistenceFailure: http.StatusInternalServerError,
	service.KindConsistency:        http.StatusInternalServerError,
}

// writeServiceError renders err as the standard error body. Internal
// failures are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	if service.IsCodeFailure(err) {
		log.Info("second factor code rejected", "reason", service.KindOf(err))
		httpx.WriteError(w, http.StatusBadRequest, campussdk.ErrorCodeInvalidCode, codeFailureDescription)
		return
	}

	kind := service.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		log.Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, campussdk.ErrorCodeServerError, "internal server error")
		return
	}

	desc := service.Describe(err)
	switch kind {
	case service.KindPersistenceFailure:
		log.Error("persistence failure", "error", err)
	case service.KindConsistency:
		log.Error("consistency failure", "error", err)
	case service.KindInvalidCredentials:
		desc = service.ErrInvalidCredentials.Error()
	case service.KindInvalidToken:
		desc = service.ErrInvalidToken.Error()
	}
	httpx.WriteError(w, status, string(kind), desc)
}

// writeBadRequest reports a body that could not be decoded.
func writeBadRequest(w http.ResponseWriter, err error) {
	httpx.WriteError(w, http.StatusBadRequest, campussdk.ErrorCodeInvalidRequest, err.Error())
}

// callerID returns the session subject placed in the context by
// AuthnMiddleware.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := httpx.UserIDFrom(r.Context())
	if id == "" {
		httpx.WriteError(w, http.StatusUnauthorized, campussdk.ErrorCodeInvalidToken, "missing session")
		return "", false
	}
	return id, true
}
