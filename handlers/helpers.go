package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Dosada05/prediction-league/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type jsonResponse map[string]interface{}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// В ошибках используем имена полей из JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// decodeAndValidate reads the body into dst and runs struct validation. It writes the
// error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := readJSON(w, r, dst); err != nil {
		badRequestResponse(w, r, err)
		return false
	}
	if fieldErrors := validationErrors(dst); fieldErrors != nil {
		failedValidationResponse(w, r, fieldErrors)
		return false
	}
	return true
}

func validationErrors(dst interface{}) map[string]string {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), reflect.TypeOf(dst).Elem().Name()+".")
		if fe.Param() != "" {
			out[field] = fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		} else {
			out[field] = fmt.Sprintf("failed %s", fe.Tag())
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := writeJSON(w, status, data, nil); err != nil {
		slog.Default().Error("failed to write JSON response", "path", r.URL.Path, "error", err)
	}
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Default().Error("failed to write error response", "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Default().Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "the requested resource could not be found"
	}
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// getIDFromURL parses a positive integer chi URL parameter.
func getIDFromURL(r *http.Request, param string) (int, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return 0, fmt.Errorf("missing %s in URL path", param)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s in URL path", param)
	}
	return id, nil
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Не найдено
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrFixtureNotFound),
		errors.Is(err, services.ErrPredictionNotFound),
		errors.Is(err, services.ErrChipNotActive),
		errors.Is(err, services.ErrLeagueNotFound),
		errors.Is(err, services.ErrInvalidGameweek),
		errors.Is(err, services.ErrNoFixtures):
		notFoundResponse(w, r, err.Error())

	// Конфликты
	case errors.Is(err, services.ErrUserEmailConflict),
		errors.Is(err, services.ErrUserNicknameConflict),
		errors.Is(err, services.ErrFixtureExternalRefConflict),
		errors.Is(err, services.ErrChipAlreadyActive),
		errors.Is(err, services.ErrAlreadyLeagueMember):
		conflictResponse(w, r, err.Error())

	// Правила игры: запрос корректен, но сейчас невыполним
	case errors.Is(err, services.ErrPredictionDeadlinePassed),
		errors.Is(err, services.ErrPredictionLocked),
		errors.Is(err, services.ErrGameweekLocked):
		errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())

	// Невалидные данные
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrTooManyScorers),
		errors.Is(err, services.ErrUnknownChip),
		errors.Is(err, services.ErrChipNotGameweekScoped),
		errors.Is(err, services.ErrLeagueNameRequired):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrUnsupportedAvatarType):
		errorResponse(w, r, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, services.ErrAvatarStorageDisabled):
		errorResponse(w, r, http.StatusServiceUnavailable, err.Error())

	// Ошибки авторизации/доступа
	case errors.Is(err, services.ErrInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrForbiddenOperation),
		errors.Is(err, services.ErrNotLeagueMember):
		forbiddenResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

// readIntQuery returns nil when the query parameter is absent.
func readIntQuery(r *http.Request, key string) (*int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return nil, fmt.Errorf("%s must be a positive integer", key)
	}
	return &v, nil
}
