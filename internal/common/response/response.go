package response

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/otel"
)

// WriteJsonResponse writes the storefront envelope. Every body already
// carries the "success" key; the status code is passed explicitly so the
// handler decides it once.
func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	statusCode int,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str("tag", "WriteJsonResponse").Logger()

	w.Header().Add(HeaderContentType, HeaderValueJson)
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
}

// WriteErrorResponse maps err through the error taxonomy and writes
// {"success": false, "error": <message>}. Unexpected errors are masked so
// internals do not leak to the client.
func WriteErrorResponse(c context.Context, w http.ResponseWriter, err error) {
	statusCode := commonErrors.StatusCode(err)
	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		message = "Internal Server Error"
	}
	WriteJsonResponse(c, w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
