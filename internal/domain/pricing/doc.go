// Package pricing contains the grocery price comparison bounded context.
//
// Key concepts:
//   - Item: a normalized, case-folded grocery product name
//   - ZipRecord: static reference data for a supported ZIP code
//   - ZipSnapshot: the resolved prices of a basket in one ZIP
//   - PriceResponse: the per-request comparison across ZIPs
//   - PriceProvider: port for live price sources (commerce API, scraper)
//   - ResponseCache / DatasetStore: ports for the response cache and the
//     pre-scraped price snapshot
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package pricing
