package extractor_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
	"github.com/jonesrussell/north-cloud/formfill/internal/extractor"
)

const applicationForm = `<html><head><title>Apply</title><script>var x = "hidden";</script></head><body>
<h1>Application</h1>
<p>Intro</p>
<label>First name</label><input id="first" class="a  b" onclick="x()" aria-required="true">
<select name="country">
  <option value="ca"> Canada </option>
  <optgroup label="Other"><option>Elsewhere</option></optgroup>
</select>
<label>Bio</label>
<input type="text" name="last">
<textarea name="bio"></textarea>
<button type="submit">Apply now</button>
<input type="checkbox" name="agree">
<p>Footer</p>
</body></html>`

func TestExtract_KeysAndOrder(t *testing.T) {
	t.Parallel()

	tags, err := extractor.Extract(applicationForm)
	require.NoError(t, err)

	var keys []string
	for i, tag := range tags {
		assert.Equal(t, i, tag.Idx)
		keys = append(keys, tag.Key)
	}
	assert.Equal(t, []string{"input_1", "select_1", "input_2", "textarea_1", "button_1", "input_3"}, keys)
	assert.Equal(t, domain.TagSelect, tags[1].TagType)
	assert.Equal(t, domain.TagButton, tags[4].TagType)
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := extractor.Extract(applicationForm)
	require.NoError(t, err)
	second, err := extractor.Extract(applicationForm)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtract_Attributes(t *testing.T) {
	t.Parallel()

	tags, err := extractor.Extract(applicationForm)
	require.NoError(t, err)

	first := tags[0].Attributes
	assert.Equal(t, []string{"a", "b"}, first.Class)
	require.NotNil(t, first.ID)
	assert.Equal(t, "first", *first.ID)
	require.NotNil(t, first.AriaRequired)
	assert.Equal(t, "true", *first.AriaRequired)

	var names []string
	first.Each(func(name, _ string) { names = append(names, name) })
	assert.Equal(t, []string{"class", "id", "aria-required"}, names)
}

func TestExtract_SelectOptions(t *testing.T) {
	t.Parallel()

	tags, err := extractor.Extract(applicationForm)
	require.NoError(t, err)

	assert.Equal(t, []domain.SelectOption{
		{Value: "ca", Text: "Canada"},
		{Value: "", Text: "Elsewhere"},
	}, tags[1].SelectOptions)

	for _, tag := range tags {
		if tag.TagType != domain.TagSelect {
			assert.Nil(t, tag.SelectOptions, tag.Key)
		}
	}
}

func TestExtract_EmptySelectHasNoOptions(t *testing.T) {
	t.Parallel()

	tags, err := extractor.Extract(`<select name="s"></select>`)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.NotNil(t, tags[0].SelectOptions)
	assert.Empty(t, tags[0].SelectOptions)
}

func TestExtract_Context(t *testing.T) {
	t.Parallel()

	tags, err := extractor.Extract(applicationForm)
	require.NoError(t, err)

	tests := []struct {
		key   string
		above []string
		below []string
	}{
		{key: "input_1", above: []string{"Application", "Intro", "First name"}, below: []string{"Bio", "Apply now", "Footer"}},
		{key: "select_1", above: []string{"Application", "Intro", "First name"}, below: []string{"Bio", "Apply now", "Footer"}},
		{key: "input_2", above: []string{"Intro", "First name", "Bio"}, below: []string{"Apply now", "Footer"}},
		{key: "button_1", above: []string{"Intro", "First name", "Bio"}, below: []string{"Apply now", "Footer"}},
		{key: "input_3", above: []string{"First name", "Bio", "Apply now"}, below: []string{"Footer"}},
	}

	byKey := make(map[string]domain.TagRecord, len(tags))
	for _, tag := range tags {
		byKey[tag.Key] = tag
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			tag := byKey[tt.key]
			assert.Equal(t, tt.above, tag.TextAbove)
			assert.Equal(t, tt.below, tag.TextBelow)
		})
	}
}

func TestExtract_OptionLabelsAreNotContext(t *testing.T) {
	t.Parallel()

	tags, err := extractor.Extract(`<label>Country</label><select name="c"><option>Canada</option><option>France</option></select><input name="city"><p>Done</p>`)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	city := tags[1]
	assert.Equal(t, []string{"Country"}, city.TextAbove)
	assert.Equal(t, []string{"Done"}, city.TextBelow)
	assert.Equal(t, []string{"Done"}, tags[0].TextBelow)
}

func TestExtract_ContextBounds(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 130)
	tags, err := extractor.Extract(fmt.Sprintf(`<p>%s</p><input name="a">`, long))
	require.NoError(t, err)
	require.Len(t, tags, 1)

	require.Len(t, tags[0].TextAbove, 1)
	assert.Equal(t, strings.Repeat("é", extractor.MaxFragmentRunes), tags[0].TextAbove[0])
	assert.Empty(t, tags[0].TextBelow)
	assert.NotNil(t, tags[0].TextBelow)
}

func TestExtract_NoFillableElements(t *testing.T) {
	t.Parallel()

	tags, err := extractor.Extract(`<p>nothing here</p>`)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestFindByExactText(t *testing.T) {
	t.Parallel()

	doc, err := extractor.Parse(`<div><span>x</span>
		<div role="combobox" aria-haspopup="true" aria-required="true" value="v">  Pick one </div>
		<span>y</span></div>`)
	require.NoError(t, err)

	m, found := doc.FindByExactText("Pick one")
	require.True(t, found)
	assert.Equal(t, "div", m.TagType)
	assert.Equal(t, fmt.Sprintf("element_%d", m.Idx), m.Key)
	assert.Equal(t, domain.Yes, m.IsRelevantOrRequired)
	assert.Equal(t, domain.Filled, m.IsFilled)
	assert.Equal(t, "dropdown", m.GeneralInputGroup)
	assert.Equal(t, "Pick one", m.TextValue)
	assert.Equal(t, []string{"x"}, m.TextAbove)
	assert.Equal(t, []string{"y"}, m.TextBelow)
	require.NotNil(t, m.Attributes.Role)
	assert.Equal(t, "combobox", *m.Attributes.Role)
}

func TestFindByExactText_DefaultsAndMisses(t *testing.T) {
	t.Parallel()

	doc, err := extractor.Parse(applicationForm)
	require.NoError(t, err)

	m, found := doc.FindByExactText("First name")
	require.True(t, found)
	assert.Equal(t, "label", m.TagType)
	assert.Equal(t, domain.No, m.IsRelevantOrRequired)
	assert.Equal(t, domain.Unfilled, m.IsFilled)
	assert.Empty(t, m.GeneralInputGroup)

	m, found = doc.FindByExactText("Canada")
	require.True(t, found)
	assert.Equal(t, "option", m.TagType)

	for _, miss := range []string{"First", "hidden", "Apply", "", "   "} {
		_, found = doc.FindByExactText(miss)
		assert.False(t, found, "%q", miss)
	}
}

func TestFindParentByExactText(t *testing.T) {
	t.Parallel()

	doc, err := extractor.Parse(`<ul>
		<li>Alpha</li>
		<li class="opt"><span>Beta</span></li>
		<li>Gamma</li><li>Delta</li><li>Eps</li><li>Zeta</li>
	</ul>`)
	require.NoError(t, err)

	m, found := doc.FindParentByExactText("Beta")
	require.True(t, found)
	assert.Equal(t, "li", m.TagType)
	assert.Equal(t, []string{"opt"}, m.Attributes.Class)
	assert.Equal(t, []string{"Alpha"}, m.TextAbove)
	assert.Equal(t, []string{"Gamma", "Delta", "Eps"}, m.TextBelow)
	assert.Equal(t, "A li element for Beta", m.Description)

	_, found = doc.FindParentByExactText("Omega")
	assert.False(t, found)
}

func TestLines(t *testing.T) {
	t.Parallel()

	doc, err := extractor.Parse("<script>x</script><p>a\n   b</p><select><option> One </option></select>")
	require.NoError(t, err)
	assert.Equal(t, []string{"a b", "One"}, doc.Lines())
}

func TestNewLines(t *testing.T) {
	t.Parallel()

	added, err := extractor.NewLines(
		`<div>Question</div>`,
		`<div>Question</div><ul><li>Yes</li><li> No  thanks </li><li>Yes</li></ul>`,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"No thanks", "Yes"}, added)

	added, err = extractor.NewLines(`<p>same</p>`, `<p>same</p>`)
	require.NoError(t, err)
	assert.Empty(t, added)
}
