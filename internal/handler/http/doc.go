// Package http assembles the request pipeline of the service.
//
// [NewHandler] takes a route table and [Options]; [Handler.Init] returns the
// http.Handler to serve. Every request passes the same stages in a fixed
// order: CORS, body decoding, access logging with a trace id, security
// headers, the health probes, the response envelope and finally the route
// table, which validates requests against the OpenAPI document before the
// caller's handlers run. Any stage that fails hands its error to a single
// translation chain that renders the canonical JSON error body.
//
// The route table is rebuilt by [Handler.Reload] and swapped atomically, so
// a schema change never interrupts requests in flight.
package http
