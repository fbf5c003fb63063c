package locator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const card = `<html><body><div class="job-card-container">
<div class="artdeco-entity-lockup__title"><a href="#"><span aria-hidden="true">   </span>Visible title</a></div>
<h3>Fallback Title</h3>
<ul><li class="x">one</li><li class="y">two</li></ul>
</div></body></html>`

func parse(t *testing.T) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(card))
	require.NoError(t, err)
	return doc
}

func TestCompile(t *testing.T) {
	_, err := Compile("title", "div[", "h3")
	assert.Error(t, err)

	_, err = Compile("empty", "  ", "")
	assert.Error(t, err)

	loc, err := Compile("title", "h3", " ", "a")
	require.NoError(t, err)
	assert.Len(t, loc.Strategies, 2)
	assert.False(t, loc.IsZero())
	assert.True(t, Locator{}.IsZero())

	assert.Panics(t, func() { MustCompile("bad", "[[") })
}

func TestTextFallsBackOnBlank(t *testing.T) {
	doc := parse(t)
	loc := MustCompile("title",
		`.artdeco-entity-lockup__title a span[aria-hidden="true"]`,
		`.artdeco-entity-lockup__title a`,
		`h3`,
	)

	//the first strategy finds a blank span, the second yields text
	assert.Equal(t, "Visible title", loc.Text(doc))

	onlyMissing := MustCompile("none", ".missing", "h4")
	assert.Equal(t, "", onlyMissing.Text(doc))
	assert.Equal(t, "", loc.Text(nil))
}

func TestFirstAndAll(t *testing.T) {
	doc := parse(t)

	loc := MustCompile("items", ".missing", "li")
	assert.Equal(t, "one", textContent(loc.First(doc)))
	assert.Len(t, loc.All(doc), 2)
	assert.Nil(t, MustCompile("none", ".missing").First(doc))
	assert.Nil(t, loc.All(nil))
}

func TestEach(t *testing.T) {
	doc := parse(t)

	loc := MustCompile("text", "li.y", "li", "li.x, li.y")
	nodes := loc.Each(doc)
	require.Len(t, nodes, 2)
	assert.Equal(t, "two", textContent(nodes[0]))
	assert.Equal(t, "one", textContent(nodes[1]))
}
