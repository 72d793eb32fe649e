package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// bindError is a malformed or invalid request. It always maps to 400.
type bindError struct {
	msg string
}

func (e *bindError) Error() string { return e.msg }

type validatorSvc struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

// validation returns the validator singleton with english messages that use
// json field names.
func validation() *validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		vSvc = &validatorSvc{validate: v, translator: trans}
	})
	return vSvc
}

// validationMessage joins the translated field errors.
func (s *validatorSvc) validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Translate(s.translator))
	}
	return strings.Join(msgs, "; ")
}

// jsonOptions controls decodeJSON.
type jsonOptions struct {
	DisallowUnknown bool
}

var strictJSON = jsonOptions{DisallowUnknown: true}

// decodeJSON reads one JSON object into T and validates it. Failures come
// back as *bindError.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, opts jsonOptions) (T, error) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if opts.DisallowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return v, &bindError{msg: "request body is empty"}
		case errors.As(err, &tooLarge):
			return v, &bindError{msg: "request body is too large"}
		default:
			return v, &bindError{msg: "invalid JSON body"}
		}
	}
	if dec.More() {
		return v, &bindError{msg: "request body must be a single JSON object"}
	}

	svc := validation()
	if err := svc.validate.Struct(v); err != nil {
		return v, &bindError{msg: svc.validationMessage(err)}
	}
	return v, nil
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &bindError{msg: "invalid id"}
	}
	return id, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &bindError{msg: field + " must be a date (YYYY-MM-DD)"}
}

// listParam reads a query parameter given either repeated or comma separated.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
