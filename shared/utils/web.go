package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	internal_errors "github.com/itchan-dev/confessions/shared/errors"
	"github.com/itchan-dev/confessions/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errors that know their own status (ValidationError, RateLimitError)
type statusCoder interface {
	StatusCode() int
}

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var withCode *internal_errors.ErrorWithStatusCode
	if errors.As(err, &withCode) {
		http.Error(w, withCode.Message, withCode.StatusCode)
		return
	}
	var coder statusCoder
	if errors.As(err, &coder) {
		http.Error(w, err.Error(), coder.StatusCode())
		return
	}
	// default error is 500
	logger.Log.Error("internal error", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: 400}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("request body is not json", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400}
	}
	return nil
}
