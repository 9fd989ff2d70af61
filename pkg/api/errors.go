package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/frames"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/projector"
	"github.com/gin-gonic/gin"
)

var (
	errUnknownDataset = errors.New("unknown dataset")
	errBadParameter   = errors.New("bad url parameter")
	errNoFrameSource  = errors.New("dataset has no frame images")
)

//toErrBuilder classifies err and picks the status it is answered with
func toErrBuilder(err error) (int, *errbuilder.ErrBuilder) {
	code, status := errbuilder.CodeInternal, http.StatusInternalServerError

	switch {
	case errors.Is(err, errBadParameter):
		//missing or malformed url parameter
		code, status = errbuilder.CodeInvalidArgument, http.StatusNotAcceptable
	case errors.Is(err, errUnknownDataset),
		errors.Is(err, errNoFrameSource),
		errors.Is(err, frames.ErrNotFound),
		errors.Is(err, projector.ErrFrameIndexOutOfRange):
		code, status = errbuilder.CodeInvalidArgument, http.StatusNotFound
	case errors.Is(err, projector.ErrMissingScoreColumn),
		errors.Is(err, projector.ErrFieldUnavailable):
		code, status = errbuilder.CodeFailedPrecondition, http.StatusUnprocessableEntity
	}

	return status, errbuilder.New().
		WithCode(code).
		WithMsg(err.Error()).
		WithCause(err)
}

func codeName(eb *errbuilder.ErrBuilder) string {
	switch eb.ErrCode() {
	case errbuilder.CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case errbuilder.CodeFailedPrecondition:
		return "FAILED_PRECONDITION"
	default:
		return "INTERNAL"
	}
}

//writeError answers with the classified status. extra carries the neutral projection
//the client shows instead of the failed one.
func writeError(ctx *gin.Context, err error, extra gin.H) {
	status, eb := toErrBuilder(err)
	if status >= http.StatusInternalServerError {
		log.Printf("api: Error on '%s', got '%v'", ctx.Request.URL.Path, err)
	}

	body := gin.H{"error": eb.Msg, "code": codeName(eb)}
	for k, v := range extra {
		body[k] = v
	}
	ctx.JSON(status, body)
}
