// Package server serves the live status page and its poll outcome stream.
//
// It exposes the current document at "/", the latest poll record at
// "/api/status", and a Server-Sent Events stream at "/api/sse". Routing uses
// go-chi/chi.
//
// Users of the statuspoller library should not need to interact with this
// package directly.
package server
