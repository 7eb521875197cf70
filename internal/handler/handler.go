package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/siakad-backend/internal/response"
	"github.com/stemsi/siakad-backend/internal/service"
	"github.com/stemsi/siakad-backend/internal/storage"
)

// respondError writes the envelope for an engine error. Unclassified errors
// are attached to the context for the request logger and answered with a
// generic 500.
func respondError(c *gin.Context, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	status, code := http.StatusInternalServerError, response.ErrInternal
	switch {
	case errors.Is(err, service.ErrValidation):
		status, code = http.StatusBadRequest, response.ErrValidation
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusBadRequest, response.ErrConflict
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, response.ErrForbidden
	case errors.Is(err, service.ErrInvariant):
		status, code = http.StatusBadRequest, response.ErrInvariant
	default:
		_ = c.Error(err)
		response.Fail(c, status, code)
		return
	}
	response.FailWithMessage(c, status, code, se.Message, se.Fields)
}

// paramID parses a positive integer path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter. Malformed values read as 0.
func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}

// formFile opens the optional multipart file under field. The returned
// close func is never nil.
func formFile(c *gin.Context, field string) (*storage.Upload, func(), error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	up := &storage.Upload{Filename: header.Filename, Size: header.Size, Content: f}
	return up, func() { _ = f.Close() }, nil
}
