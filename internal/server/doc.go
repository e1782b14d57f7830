// Package server exposes clustergraph over HTTP.
//
// The server hosts one graph and any number of sessions. A session owns a
// controller.Controller, so each browser tab (or API client) has its own
// collapse flags and hidden clusters while sharing the immutable graph.
// Requests against one session are serialized; different sessions proceed
// in parallel.
//
// # Routes
//
//	GET    /health
//	GET    /api/config                                   layout parameters and commands
//	GET    /api/graph                                    the full graph document
//	POST   /api/sessions                                 create a session
//	GET    /api/sessions/{sessionID}/subgraph            current visible subgraph
//	POST   /api/sessions/{sessionID}/nodes/{nodeID}/select
//	POST   /api/sessions/{sessionID}/clusters/{clusterID}/toggle
//	POST   /api/sessions/{sessionID}/commands/{name}
//	POST   /api/sessions/{sessionID}/reset
//	GET    /api/sessions/{sessionID}/render?format=svg&detailed=false
//	DELETE /api/sessions/{sessionID}
//
// Errors are JSON objects {"error": true, "code": "...", "message": "..."}
// whose HTTP status follows the error code: NOT_FOUND and UNKNOWN_COMMAND map
// to 404, DANGLING_LINK to 422, INVALID_* to 400.
package server
