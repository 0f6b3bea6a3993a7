/*
Package http exposes editing sessions over a REST API.

Every mutation goes through the session manager, so concurrent requests on one
session are serialized, and each resulting graph diff is pushed to clients
subscribed on GET /events?session_id=... (server-sent events).

The API is described by the embedded OpenAPI document served at /openapi.yaml.
*/
package http
