// package formatter renders resolution results to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/soundslike/marquee/internal/models"
	"github.com/soundslike/marquee/internal/shared"
)

// ExportToCSV converts a Resolution's track list to CSV with columns: ID, Title, Artist, Album, Duration, URL
func ExportToCSV(resolution *models.Resolution) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range resolution.Tracks {
		record := []string{
			track.ID,
			track.Name,
			track.Artist,
			track.Album,
			strconv.Itoa(track.DurationMS),
			track.PlatformURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Resolution to Markdown, headed by the event
// name and followed by the match report and track list.
func ExportToMarkdown(event string, resolution *models.Resolution) ([]byte, error) {
	var buf bytes.Buffer

	if event == "" {
		event = "Lineup"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", event))

	buf.WriteString(fmt.Sprintf("**Artists found**: %d of %d\n", resolution.FoundArtists, len(resolution.Matches)))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(resolution.Tracks)))

	buf.WriteString("## Artists\n\n")
	for _, match := range resolution.Matches {
		buf.WriteString(fmt.Sprintf("- %s\n", matchLine(match)))
	}

	buf.WriteString("\n## Tracks\n\n")
	for i, track := range resolution.Tracks {
		duration := shared.FormatDuration(track.DurationMS)
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Name, albumPart, duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Resolution to plain text.
func ExportToText(event string, resolution *models.Resolution) ([]byte, error) {
	var buf bytes.Buffer

	if event != "" {
		buf.WriteString(fmt.Sprintf("Event: %s\n", event))
	}
	buf.WriteString(fmt.Sprintf("Artists found: %d of %d\n", resolution.FoundArtists, len(resolution.Matches)))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(resolution.Tracks)))

	for i, track := range resolution.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Name))
	}

	return buf.Bytes(), nil
}

// MatchReport renders per-artist diagnostics as plain text, one line per
// requested artist.
func MatchReport(matches []models.ArtistMatch) []byte {
	var buf bytes.Buffer
	for _, match := range matches {
		buf.WriteString(matchLine(match))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// matchLine describes a single match outcome. The three cases are matched,
// found-but-suppressed, and not found.
func matchLine(match models.ArtistMatch) string {
	switch {
	case match.Matched:
		return fmt.Sprintf("%s -> %s (%.0f%%)", match.Requested, match.Found, match.Similarity*100)
	case match.Found != "":
		return fmt.Sprintf("%s -> %s (%.0f%%, below threshold, skipped)", match.Requested, match.Found, match.Similarity*100)
	default:
		return fmt.Sprintf("%s -> not found", match.Requested)
	}
}

// ToMetadataJSON generates a JSON representation of a build record.
func ToMetadataJSON(record *models.BuildRecord) ([]byte, error) {
	return shared.MarshalJSON(record, true)
}

// downloadClient is a package variable so tests can stub the transport.
var downloadClient = &http.Client{Timeout: 30 * time.Second}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	resp, err := downloadClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}
