package handlers

import (
	"net/http"

	"import-broker/internal/apperror"
	"import-broker/internal/logger"
)

// kindStatus maps service error kinds to HTTP status codes. Anything
// without a kind is an internal failure and must not leak its message.
var kindStatus = map[apperror.Kind]int{
	apperror.KindNotFound:   http.StatusNotFound,
	apperror.KindValidation: http.StatusBadRequest,
	apperror.KindConflict:   http.StatusConflict,
}

func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, internalMessage string) {
	if status, ok := kindStatus[apperror.KindOf(err)]; ok {
		writeErrorResponse(w, status, err.Error())
		return
	}
	if log != nil {
		log.WithError(err).Error(internalMessage)
	}
	writeErrorResponse(w, http.StatusInternalServerError, internalMessage)
}
