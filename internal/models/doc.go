// Package models defines the domain entities shared across the marquee pipeline.
//
// The package contains three categories of types:
//
// 1. Lineup input: [Artist] and [Lineup], produced upstream by poster analysis
// or hand-written lineup files. These are immutable inputs to the resolution
// engine.
//
// 2. Resolution output: [ArtistSearchResult], [ArtistMatch], [Track] and
// [Resolution], produced by the engine. One [ArtistMatch] exists per input
// artist regardless of outcome, so callers can always account for every
// requested name.
//
// 3. Configuration: [TrackCountOptions] with its [CountMode] and
// [SelectionMode] enums, controlling how many tracks each matched artist
// contributes and which slice of their catalog is eligible for sampling.
package models
