// Package webchat serves the chat in a browser.
//
// Every websocket connection gets its own chat.Session; nothing is shared
// between connections and a closed connection ends its session, dropping any
// reply that has not been delivered yet.
//
// Routes:
//   - GET /          embedded chat page
//   - GET /ws        websocket endpoint (see protocol.go for frames)
//   - GET /api/seed  the seed conversation as JSON
//   - GET /healthz   liveness
package webchat
