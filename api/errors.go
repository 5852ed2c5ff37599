package api

import (
	"errors"
	"net/http"

	"github.com/brettbedarf/treefs"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// StatusFor maps an error kind onto an HTTP status code.
func StatusFor(kind treefs.ErrorKind) int {
	switch kind {
	case treefs.KindValidation, treefs.KindConstraint:
		return http.StatusBadRequest
	case treefs.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	kind := treefs.KindOf(err)
	msg := err.Error()
	var terr *treefs.Error
	if errors.As(err, &terr) {
		msg = terr.Msg
		if msg == "" {
			msg = kind.String()
		}
	}
	// store details stay in the logs
	if !kind.IsClient() && kind != treefs.KindNotFound {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(StatusFor(kind), ErrorResponse{Error: msg, Kind: kind.String()})
}
