// Package tasks runs long operations over saved sites with progress reporting.
//
// # Bulk Export
//
// [ExportEngine.BulkExport] fetches the details of many saved sites and writes
// each one with the formatter:
//
//  1. Site details are fetched concurrently by a bounded errgroup, paced by a
//     rate limiter so large exports don't flood the API.
//  2. A failed site is recorded in its [SiteExportResult] and the rest continue.
//  3. An export_manifest.json summarising every site is written last.
//
// # Progress Reporting
//
// Progress is sent as [ProgressUpdate] values on an optional channel. Sends use
// select with default, so a slow or absent reader never stalls the export.
package tasks
