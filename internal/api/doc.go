// Package api contains the HTTP handlers that expose the application's
// services, the request/response models, and the mapping from internal
// error kinds to transport status codes.
package api
