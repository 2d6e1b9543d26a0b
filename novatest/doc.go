// Package novatest provides test doubles for the nova client.
//
// MockServer is a recording HTTP server that stands in for the Nova API.
// It answers with configurable responses and remembers every request for
// verification, and can serve a fixed event set with real index/count
// paging for iterator tests.
package novatest
