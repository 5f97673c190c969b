// Package api provides a RESTful HTTP API server for managing the flow
// classification engine.
//
// The API server exposes endpoints for:
//   - Rule management (create, list)
//   - Flow classification queries
//   - Real-time statistics queries (packets, rule matches)
//   - Health checks and system status monitoring
//
// # Architecture
//
// The API server is built on the Gin web framework and delegates all
// rule and classification operations to a policy.Manager. Rule changes
// are published atomically; classification queries always observe a
// consistent rule table.
//
// # Example Usage
//
// Basic server setup:
//
//	cfg := api.DefaultConfig()
//	cfg.Port = 8080
//
//	server, err := api.NewAPIServer(cfg, ruleManager)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := server.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Stop()
//
// # Endpoints
//
// Health check:
//   - GET /api/v1/health  - Simple health check
//   - GET /api/v1/status  - Detailed system status
//
// Rule management:
//   - POST /api/v1/rules - Create or replace a rule
//   - GET  /api/v1/rules - List all rules
//
// Classification:
//   - POST /api/v1/classify - Classify a 4-tuple
//
// Statistics:
//   - GET /api/v1/stats         - All statistics
//   - GET /api/v1/stats/packets - Packet statistics
//   - GET /api/v1/stats/policy  - Rule-match statistics
//
// # Middleware
//
// The server includes the following middleware:
//   - Recovery: Catches panics and prevents server crashes
//   - Logger: Logs all HTTP requests with timing information
//   - CORS: Enables cross-origin resource sharing for web UIs
package api
