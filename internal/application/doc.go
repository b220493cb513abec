// Package application provides application initialization and dependency wiring.
// It encapsulates the creation of storage, the splitter, handlers, routers,
// and HTTP server instances, and seeds the eligibility index from disk so the
// main package stays focused on CLI parsing and orchestration.
package application
