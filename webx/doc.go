// Package webx is a small HTTP/1.0 web server for resource-constrained
// hosts. It owns the wire-level request lifecycle: bounded reads off a
// socket, manual request parsing, a priority-ordered route table with
// :before/:after hooks, and a response path polymorphic over several
// payload shapes with chunk-by-chunk streaming.
//
// Highlights
//   - Router: longest-prefix matching with trailing-'*' wildcards;
//     exact routes outrank wildcards of the same length.
//   - Flow: one mutable request/response context per connection, with
//     memoized body accessors (bytes, JSON, form pairs, raw stream)
//     and an opaque Var map for inter-hook state.
//   - Serializer: text, bytes, JSON, form, lazy stream and producer
//     payloads; files stream in limit-sized chunks so large bodies are
//     never resident in memory.
//   - Dispatcher: one goroutine per connection, soft client ceiling,
//     every response closes the connection (no keep-alive, no chunked
//     encoding, no internal timeouts).
//   - Observability: plug-in Logger and Meter interfaces.
//
// Quick start:
//
//	w := webx.NewWeb()
//	w.Route("hello/*", "get", func(f *webx.Flow, args ...any) error {
//	    f.SendText("hello " + f.Path)
//	    return nil
//	})
//	w.Route("*", webx.MethodAfter, func(f *webx.Flow, args ...any) error {
//	    f.Tail.Set("Access-Control-Allow-Origin", "*")
//	    return nil
//	})
//	if err := webx.ListenAndServe(w, ":8080", 1024, 10); err != nil {
//	    log.Fatal(err)
//	}
package webx
