// Package openapi adapts an OpenAPI 3 document to the request pipeline.
//
// It loads and validates the document, checks incoming requests against it
// (path, method, parameters, body, content negotiation, and bearer token
// security schemes), and serves the document together with an embedded
// Swagger UI. Validation failures are reported as [*Error] values whose
// [ErrorKind] tells the error translation chain which canonical error to
// produce.
package openapi
