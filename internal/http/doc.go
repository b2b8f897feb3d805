// Package http exposes the timeline engine's query and command surface as a
// JSON API. Handlers serialize engine access behind a single mutex, matching
// the engine's single-writer design, and translate engine sentinels into
// response statuses without leaking internal detail.
package http
