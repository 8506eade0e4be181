// Package devtools provides a development-time inspector for routers.
//
// The Inspector attaches to a router and streams every finished
// navigation to connected WebSocket clients as JSON, alongside an HTTP
// endpoint that dumps the current route table. Mount its Handler in
// any mux during development:
//
//	insp := devtools.NewInspector(r)
//	defer insp.Close()
//	http.ListenAndServe(":6060", insp.Handler())
//
// Then connect to ws://localhost:6060/events for the live event feed,
// or GET /routes for the registered route table.
//
// The inspector is a debugging aid. It performs no authentication and
// should not be exposed in production.
package devtools
