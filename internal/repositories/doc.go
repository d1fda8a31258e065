// Package repositories provides the persistence layer for build history and
// the artist match cache.
//
// The engine itself is stateless; everything here is written and read by the
// command layer. BuildRepository records completed playlist builds so
// `marquee history` can list them. ArtistCacheRepository memoizes search
// outcomes per platform so repeated builds of the same lineup skip the
// search round-trips for unchanged artists.
//
// Both repositories operate on the sqlite database opened by
// [shared.NewDatabase] and assume the schema applied by
// [shared.RunMigrations].
package repositories
