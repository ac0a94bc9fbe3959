package openapi

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/MKhiriev/go-service-bootstrap/internal/auth"
	"github.com/MKhiriev/go-service-bootstrap/internal/utils"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

//go:generate mockgen -source=validator.go -destination=../mock/token_validator_mock.go -package=mock

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (models.Claims, error)
}

const issueCodeSuffix = ".openapi.validation"

// Validator checks requests against an OpenAPI document.
type Validator struct {
	router routers.Router
	tokens TokenValidator
}

// NewValidator builds a validator for doc. Every security scheme declared by
// doc must be an HTTP bearer scheme, and tokens must be set when there is
// at least one.
func NewValidator(doc *openapi3.T, tokens TokenValidator) (*Validator, error) {
	if doc == nil {
		return nil, ErrNoSchema
	}

	if doc.Components != nil {
		for name, ref := range doc.Components.SecuritySchemes {
			if ref == nil || !isBearerScheme(ref.Value) {
				return nil, fmt.Errorf("%w %q: only http bearer is supported", ErrUnsupportedScheme, name)
			}
			if tokens == nil {
				return nil, fmt.Errorf("security scheme %q: %w", name, ErrNoTokenValidator)
			}
		}
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("error building OpenAPI router: %w", err)
	}

	return &Validator{router: router, tokens: tokens}, nil
}

// Middleware validates every request before passing it on. Failures are
// handed to onError and the request goes no further. Claims of an
// authenticated request are available downstream via
// [utils.GetClaimsFromContext].
func (v *Validator) Middleware(onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(utils.WithClaimsSlot(r.Context()))
			if err := v.Validate(r); err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Validate checks r and returns an [*Error] describing the first category of
// failure found. The request body, if read, is restored.
func (v *Validator) Validate(r *http.Request) error {
	route, pathParams, err := v.router.FindRoute(r)
	if err != nil {
		if errors.Is(err, routers.ErrMethodNotAllowed) {
			return &Error{
				Kind:    MethodNotAllowed,
				Message: fmt.Sprintf("%s method not allowed", r.Method),
				Err:     err,
			}
		}
		return &Error{Kind: NotFound, Message: "not found", Err: err}
	}

	if err = checkContentType(r, route.Operation); err != nil {
		return err
	}
	if err = checkAccept(r, route.Operation); err != nil {
		return err
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError:         true,
			AuthenticationFunc: v.authenticate,
		},
	}
	if err = openapi3filter.ValidateRequest(r.Context(), input); err != nil {
		return convertError(err)
	}
	return nil
}

func (v *Validator) authenticate(ctx context.Context, input *openapi3filter.AuthenticationInput) error {
	if !isBearerScheme(input.SecurityScheme) {
		return fmt.Errorf("%w %q", ErrUnsupportedScheme, input.SecuritySchemeName)
	}
	if v.tokens == nil {
		return ErrNoTokenValidator
	}

	token, err := auth.ParseBearerToken(input.RequestValidationInput.Request.Header.Get("Authorization"))
	if err != nil {
		return err
	}

	claims, err := v.tokens.Validate(ctx, token)
	if err != nil {
		return err
	}
	if err = auth.RequireScopes(claims, input.Scopes); err != nil {
		return err
	}

	utils.SetClaims(ctx, claims)
	return nil
}

func isBearerScheme(scheme *openapi3.SecurityScheme) bool {
	return scheme != nil && scheme.Type == "http" && strings.EqualFold(scheme.Scheme, "bearer")
}

func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

func checkContentType(r *http.Request, op *openapi3.Operation) error {
	if op.RequestBody == nil || op.RequestBody.Value == nil || !hasBody(r) {
		return nil
	}

	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && op.RequestBody.Value.Content.Get(mediaType) != nil {
		return nil
	}

	return &Error{
		Kind:    UnsupportedMediaType,
		Message: fmt.Sprintf("unsupported media type %q", contentType),
	}
}

func checkAccept(r *http.Request, op *openapi3.Operation) error {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return nil
	}

	offered := responseMediaTypes(op)
	if len(offered) == 0 {
		return nil
	}

	for _, mediaRange := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(mediaRange))
		if err != nil || params["q"] == "0" {
			continue
		}
		for _, candidate := range offered {
			if mediaRangeMatches(mediaType, candidate) {
				return nil
			}
		}
	}

	return &Error{
		Kind:    NotAcceptable,
		Message: fmt.Sprintf("none of %q can be produced", accept),
	}
}

func responseMediaTypes(op *openapi3.Operation) []string {
	if op.Responses == nil {
		return nil
	}

	var out []string
	for _, ref := range op.Responses.Map() {
		if ref == nil || ref.Value == nil {
			continue
		}
		for mediaType := range ref.Value.Content {
			out = append(out, mediaType)
		}
	}
	return out
}

func mediaRangeMatches(mediaRange, mediaType string) bool {
	if mediaRange == "*/*" || mediaRange == mediaType {
		return true
	}
	rangeType, rangeSub, _ := strings.Cut(mediaRange, "/")
	typ, sub, _ := strings.Cut(mediaType, "/")
	return rangeType == typ && (rangeSub == "*" || sub == "*")
}

func convertError(err error) error {
	errs := []error{err}
	if multi, ok := err.(openapi3.MultiError); ok {
		errs = multi
	}

	for _, e := range errs {
		var secErr *openapi3filter.SecurityRequirementsError
		if errors.As(e, &secErr) {
			return &Error{
				Kind:    Unauthorized,
				Message: "authorization required",
				Err:     errors.Join(secErr.Errors...),
			}
		}
	}

	var issues []Issue
	for _, e := range errs {
		issues = append(issues, issuesFrom(e)...)
	}

	message := "request validation failed"
	if len(issues) > 0 {
		parts := make([]string, 0, len(issues))
		for _, issue := range issues {
			parts = append(parts, strings.TrimPrefix(issue.Path, "/")+" "+issue.Message)
		}
		message = strings.Join(parts, ", ")
	}

	return &Error{Kind: BadRequest, Message: message, Issues: issues, Err: err}
}

func issuesFrom(err error) []Issue {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return []Issue{{Path: "/", Message: err.Error(), Code: "openapi.validation"}}
	}

	location := requestErrorLocation(reqErr)

	schemaErrs := schemaErrors(reqErr.Err)
	if len(schemaErrs) == 0 {
		message := reqErr.Reason
		if message == "" && reqErr.Err != nil {
			message = reqErr.Err.Error()
		}
		code := "openapi.validation"
		if errors.Is(reqErr.Err, openapi3filter.ErrInvalidRequired) {
			code = "required" + issueCodeSuffix
		}
		return []Issue{{Path: location, Message: message, Code: code}}
	}

	issues := make([]Issue, 0, len(schemaErrs))
	for _, se := range schemaErrs {
		path := location
		if pointer := se.JSONPointer(); len(pointer) > 0 {
			path += "/" + strings.Join(pointer, "/")
		}
		issues = append(issues, Issue{
			Path:    path,
			Message: se.Reason,
			Code:    se.SchemaField + issueCodeSuffix,
		})
	}
	return issues
}

func requestErrorLocation(reqErr *openapi3filter.RequestError) string {
	switch {
	case reqErr.Parameter != nil:
		return "/" + reqErr.Parameter.In + "/" + reqErr.Parameter.Name
	case reqErr.RequestBody != nil:
		return "/body"
	default:
		return ""
	}
}

func schemaErrors(err error) []*openapi3.SchemaError {
	if err == nil {
		return nil
	}

	if multi, ok := err.(openapi3.MultiError); ok {
		var out []*openapi3.SchemaError
		for _, e := range multi {
			out = append(out, schemaErrors(e)...)
		}
		return out
	}

	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		return []*openapi3.SchemaError{se}
	}
	return nil
}
