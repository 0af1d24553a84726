// Package inttest starts the dependencies integration tests run against, PostgreSQL via gnomock and
// RabbitMQ via testcontainers, together with an HTTP server and token signing for the handlers
// under test. Setup functions wait for their container to be ready and register its cleanup.
package inttest
