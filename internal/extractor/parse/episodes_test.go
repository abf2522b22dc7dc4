package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEpisodeLinksPrimaryRule(t *testing.T) {
	html := `<html><body>
		<a href="/ep1">Episode 1</a>
		<a href="/ep2">Episode 2</a>
		<a href="/zip">Season Zip</a>
	</body></html>`

	links, err := ExtractEpisodeLinks(html, "https://example.com/listing")
	require.NoError(t, err)
	require.Len(t, links, 2)

	assert.Equal(t, "Episode 1", links[0].EpisodeName)
	assert.Equal(t, "https://example.com/ep1", links[0].EpisodeURL)
	assert.Equal(t, "Episode 2", links[1].EpisodeName)
	assert.Equal(t, "https://example.com/ep2", links[1].EpisodeURL)
}

func TestExtractEpisodeLinksExcludesSeasonAndZip(t *testing.T) {
	html := `<html><body>
		<a href="/a">Episode 1 Season Pack</a>
		<a href="/b">Episode 2 Zip</a>
		<a href="/c">Episode 3</a>
	</body></html>`

	links, err := ExtractEpisodeLinks(html, "https://example.com/")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "Episode 3", links[0].EpisodeName)
}

func TestExtractEpisodeLinksFallbackRule(t *testing.T) {
	// No anchor matches the case-sensitive primary rule, but the lowercase
	// "episode N" pattern does
	html := `<html><body>
		<a href="/e5">episode 5</a>
		<a href="/e6">EPISODE6</a>
		<a href="/z">episode 7 zip</a>
		<a href="/s">season episode 8</a>
	</body></html>`

	links, err := ExtractEpisodeLinks(html, "https://example.com/")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "episode 5", links[0].EpisodeName)
	assert.Equal(t, "EPISODE6", links[1].EpisodeName)
}

func TestExtractEpisodeLinksFallbackNotUsedWhenPrimaryMatches(t *testing.T) {
	html := `<html><body>
		<a href="/a">Episode 1</a>
		<a href="/b">episode 9</a>
	</body></html>`

	links, err := ExtractEpisodeLinks(html, "https://example.com/")
	require.NoError(t, err)

	// The primary rule matched, so the fallback never ran and the lowercase
	// anchor stays excluded
	require.Len(t, links, 1)
	assert.Equal(t, "Episode 1", links[0].EpisodeName)
}

func TestExtractEpisodeLinksEmpty(t *testing.T) {
	html := `<html><body>
		<a href="/about">About us</a>
		<a href="/zip">Season Zip</a>
	</body></html>`

	links, err := ExtractEpisodeLinks(html, "https://example.com/")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestExtractEpisodeLinksKeepsAbsoluteURLs(t *testing.T) {
	html := `<a href="https://other.example.net/ep1">Episode 1</a>`

	links, err := ExtractEpisodeLinks(html, "https://example.com/listing")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://other.example.net/ep1", links[0].EpisodeURL)
}

func TestExtractEpisodeLinksAllowsDuplicates(t *testing.T) {
	html := `<body>
		<a href="/ep1">Episode 1</a>
		<a href="/ep1">Episode 1</a>
	</body>`

	links, err := ExtractEpisodeLinks(html, "https://example.com/")
	require.NoError(t, err)
	assert.Len(t, links, 2)
}
