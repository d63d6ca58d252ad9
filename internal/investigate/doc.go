// Package investigate implements the failure investigation orchestrator.
//
// An investigation is a bounded pipeline of synchronous platform calls:
// resolve the flow reference, locate the most recent failed run in the
// window, summarize its logs, fetch its payloads, follow alert-flow
// indirection back to the originating flow, and assemble one consolidated
// report.
//
// Only resolution failure is request-fatal. Every later step degrades
// gracefully: a failed sub-fetch is recorded as a named gap in the report
// and the pipeline continues with whatever evidence it has. Chain
// following is bounded by a hop limit so cyclic alert-flow graphs
// terminate with a truncation flag instead of looping.
package investigate
