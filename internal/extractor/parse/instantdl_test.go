package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindInstantDLLinkButtonClass(t *testing.T) {
	// The styled button wins even with a decoy anchor earlier in the page
	html := `<body>
		<a href="/decoy">instant download</a>
		<a class="btn btn-danger" href="/instant">Instant DL</a>
	</body>`

	href, ok := FindInstantDLLink(html)
	assert.True(t, ok)
	assert.Equal(t, "/instant", href)
}

func TestFindInstantDLLinkTextFallback(t *testing.T) {
	html := `<body>
		<a href="/other">Download Zip</a>
		<a href="/instant">instant dl here</a>
	</body>`

	href, ok := FindInstantDLLink(html)
	assert.True(t, ok)
	assert.Equal(t, "/instant", href)
}

func TestFindInstantDLLinkLooseFallback(t *testing.T) {
	// Neither exact form appears, but the text carries both tokens
	html := `<a href="/instant">Instant file DL</a>`

	href, ok := FindInstantDLLink(html)
	assert.True(t, ok)
	assert.Equal(t, "/instant", href)
}

func TestFindInstantDLLinkRequiresBothTokens(t *testing.T) {
	// "download" does not contain "dl", so the loose heuristic must not fire
	html := `<body>
		<a href="/a">instant download</a>
		<a href="/b">fast dl</a>
	</body>`

	_, ok := FindInstantDLLink(html)
	assert.False(t, ok)
}

func TestFindInstantDLLinkAbsent(t *testing.T) {
	html := `<a href="/a">Regular download</a>`

	_, ok := FindInstantDLLink(html)
	assert.False(t, ok)
}

func TestFindInstantDLLinkButtonNeedsMatchingText(t *testing.T) {
	// A danger button without the right text falls through to the plain
	// text heuristics
	html := `<body>
		<a class="btn btn-danger" href="/nope">Report broken link</a>
		<a href="/yes">Instant DL</a>
	</body>`

	href, ok := FindInstantDLLink(html)
	assert.True(t, ok)
	assert.Equal(t, "/yes", href)
}
