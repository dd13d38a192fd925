package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// UIが分岐に使うエラータグ。handlerは {"error": Tag, "message": Message} で返す。
const (
	TagDuplicateBarcode = "DUPLICATE_BARCODE"
	TagNotFound         = "NOT_FOUND"
	TagValidationError  = "VALIDATION_ERROR"
	TagServerError      = "SERVER_ERROR"
	TagUnauthorized     = "UNAUTHORIZED"
	TagForbidden        = "FORBIDDEN"
)

type HTTPError struct {
	Status  int
	Tag     string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Tag, e.Message)
}

func NewHTTPError(status int, tag string, message string) error {
	return &HTTPError{
		Status:  status,
		Tag:     tag,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// よく使う形のショートカット
func errValidation(message string) error {
	return NewHTTPError(http.StatusBadRequest, TagValidationError, message)
}

func errNotFound(message string) error {
	return NewHTTPError(http.StatusNotFound, TagNotFound, message)
}

func errServer(message string) error {
	return NewHTTPError(http.StatusInternalServerError, TagServerError, message)
}
