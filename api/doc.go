// Package api provides the administrative HTTP surface of the gateway.
//
// Every endpoint is a pure reader or forwarder over the client registry's
// public contract and the party store; none of them carry protocol-state
// logic.
//
// Endpoints:
//
//   - GET  /healthz - liveness probe
//   - GET  /api/v1/status - server name, environment, uptime, client count
//   - GET  /api/v1/clients - live session summaries
//   - GET  /api/v1/clients/{accountId}/presence - last broadcast presence
//   - POST /api/v1/clients/{accountId}/message - push an admin chat message
//   - POST /api/v1/parties - create a party
//   - GET  /api/v1/parties - list parties
//   - GET  /api/v1/parties/{id} - fetch one party
//
// All endpoints accept and return JSON. Errors are returned as
// {"error": "message"} with an appropriate HTTP status code.
package api
