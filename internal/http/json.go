package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/target/control-panel-ui/internal/errors"
)

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Message string
}

// WriteError writes a JSON error body of the form {"error": code, "message": text}.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Message})
}

// WriteAppError maps an application error onto its status code and error code.
// Only the AppError message is exposed; wrapped causes stay in the logs.
func WriteAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	msg := apperrors.GetMessage(err)
	if msg == "" {
		msg = http.StatusText(apperrors.HTTPStatus(err))
	}
	WriteError(w, ErrorParams{Code: apperrors.HTTPStatus(err), ErrCode: string(code), Message: msg})
}
