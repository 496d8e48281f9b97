package httperr

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/json; charset=utf-8"

type errorBody struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Stack   string            `json:"stack,omitempty"`
}

type envelope struct {
	Error errorBody `json:"error"`
}

// Write converts err into a well-formed response. Redirect signals get
// an empty body with their Location header; client faults render the
// structured JSON error body with the original status; server faults
// render a generic message unless env is development or test, in which
// case the real message and stack are exposed.
func Write(w http.ResponseWriter, r *http.Request, err error, env string, stack []byte) {
	herr := From(err)

	for key, values := range herr.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	if herr.IsRedirect() {
		w.WriteHeader(herr.Status)
		return
	}

	log(r, herr)

	body := errorBody{
		Message: herr.Message,
		Code:    herr.Code,
		Fields:  herr.Fields,
	}
	if herr.Status >= 500 {
		if devMode(env) {
			body.Message = herr.Error()
			body.Stack = string(stack)
		} else {
			body.Message = "internal server error"
		}
	}

	payload, merr := json.Marshal(envelope{Error: body})
	if merr != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"internal server error","code":"SERVER_ERROR"}}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(herr.Status)
	_, _ = w.Write(payload)
}

func log(r *http.Request, herr *Error) {
	if r == nil {
		return
	}
	logger := zerolog.Ctx(r.Context())
	event := logger.Warn()
	if herr.Status >= 500 {
		event = logger.Error()
	} else if herr.Status < 400 {
		return
	}
	event.
		Err(herr).
		Int("status", herr.Status).
		Str("code", herr.Code).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
}

func devMode(env string) bool {
	return env == "development" || env == "test"
}
