// Package models defines the client-side domain types for swatch.
//
// Two groups of types live here:
//
// 1. Session types: the authenticated identity held by the session holder
//   - [User] : identity record returned by the login endpoint and persisted locally
//   - [Session] : a [User] plus the bearer credential; either complete or absent
//
// 2. Analysis types: payloads exchanged with the design-analysis API
//   - [AnalysisResult] : the analysis currently on screen
//   - [PreviewSummary] : listing entry for a saved analysis
//   - [SiteDetails] : the full saved record, convertible to an [AnalysisResult]
//
// Wire decoding keeps optional fields as pointers so absence can be told apart from zero values,
// and [ScrapeResponse.Result] / [SiteDetails.Result] apply the display fallbacks.
package models
