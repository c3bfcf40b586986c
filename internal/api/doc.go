// Package api provides HTTP handlers for the entry and image upload API.
//
// Handlers translate HTTP requests into service calls and map internal
// errors to sanitized HTTP responses. Image uploads are accepted with
// 202 Accepted and analyzed asynchronously by the worker; clients poll
// GET /api/entries/{entryID} for results.
package api
