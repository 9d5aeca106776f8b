// Package wire encodes telemetry events into the ingestion API's wire
// format.
//
// Each event becomes one or two envelopes {id, timestamp, type, body}. The
// format is an external compatibility contract: optional fields are written
// as explicit nulls (never omitted), timestamps are ISO-8601 with
// millisecond precision and a "Z" suffix, metadata values are coerced to
// strings, and tool calls are flattened into a span-create/span-update pair
// with a synthesized "Tool: <name>" span name. Generation and tool-call
// body ids are derived deterministically from (traceId, name) so that later
// events with the same name upsert the same remote observation.
package wire
