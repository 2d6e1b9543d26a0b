// Package nova provides a Go client for the Splunk Nova events API.
//
// The client covers the two halves of the service: ingesting schema-less
// JSON events, and searching previously ingested events with a chainable
// query builder.
//
// Create a client with your API credentials:
//
//	client, err := nova.New("client-id", "client-secret")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Ingest events (each event needs "entity" and "source" fields):
//
//	result, err := client.Ingest(ctx, []nova.Event{
//	    {"entity": "host-1", "source": "webserver", "status": 200},
//	})
//
// Search with a chainable builder. Chain steps return new values, so a
// shared prefix can branch into multiple terminal calls:
//
//	page, err := client.Search("source=webserver").Events(ctx, 0, 10)
//
//	rows, err := client.Search("source=webserver").
//	    Stats(ctx, "count by clientip")
//
//	nas := client.Search("entity=nas").
//	    Eval("gb", "kb / 1024 / 1024").
//	    Eval("path", "dirname + filename")
//	page, err := nas.Events(ctx, 0, 100)
//	rows, err := nas.Timechart(ctx, "avg(gb)")
//
// Iterate over all matching events without loading them into memory:
//
//	it := client.Search("source=webserver").IterEvents()
//	for it.Next(ctx) {
//	    fmt.Println(it.Event())
//	}
//	if err := it.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// All operations are synchronous request/response calls. The client holds
// no background goroutines and needs no shutdown.
package nova
