package segmenter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	segmenter := New()
	require.NotNil(t, segmenter)
	assert.IsType(t, &Segmenter{}, segmenter)
}

func TestSegment_Markdown(t *testing.T) {
	segmenter := New()
	ctx := context.Background()

	raw := []byte(`# Trail Running Shoes

An intro paragraph. With two sentences.

## Grip

Grip keeps you upright on wet rock. Lugs bite into mud.

### Rubber compounds

Softer rubber grips better.

## Cushioning

Foam absorbs repeated impact.
`)

	page, err := segmenter.Segment(ctx, raw, driven.FormatMarkdown)
	require.NoError(t, err)

	assert.Equal(t, "Trail Running Shoes", page.Title.Text)
	assert.True(t, page.Meta.IsEmpty())
	require.Len(t, page.Sections, 4)

	// Intro before the first section heading forms an implicit section.
	intro := page.Sections[0]
	assert.True(t, intro.Heading.IsEmpty())
	assert.Zero(t, intro.HeadingDepth)
	require.Len(t, intro.Sentences, 2)
	assert.Equal(t, "An intro paragraph.", intro.Sentences[0].Text)
	assert.Equal(t, "With two sentences.", intro.Sentences[1].Text)

	grip := page.Sections[1]
	assert.Equal(t, "Grip", grip.Heading.Text)
	assert.Equal(t, 2, grip.HeadingDepth)
	require.Len(t, grip.Sentences, 2)

	rubber := page.Sections[2]
	assert.Equal(t, "Rubber compounds", rubber.Heading.Text)
	assert.Equal(t, 3, rubber.HeadingDepth)

	cushioning := page.Sections[3]
	assert.Equal(t, "Cushioning", cushioning.Heading.Text)
	assert.Equal(t, 2, cushioning.HeadingDepth)
}

func TestSegment_Markdown_FrontMatter(t *testing.T) {
	segmenter := New()
	ctx := context.Background()

	raw := []byte(`---
title: "Front Title"
description: A meta description.
---
# Body Heading

Some content here.
`)

	page, err := segmenter.Segment(ctx, raw, driven.FormatMarkdown)
	require.NoError(t, err)

	assert.Equal(t, "Front Title", page.Title.Text)
	assert.Equal(t, "A meta description.", page.Meta.Text)

	// The H1 is no longer the title, so it opens a section instead.
	require.Len(t, page.Sections, 1)
	assert.Equal(t, "Body Heading", page.Sections[0].Heading.Text)
	assert.Equal(t, 1, page.Sections[0].HeadingDepth)
}

func TestSegment_Markdown_StripsFormatting(t *testing.T) {
	segmenter := New()
	ctx := context.Background()

	raw := []byte("# Title\n\n" +
		"A **bold** claim with a [link](https://example.com) and `code`.\n\n" +
		"```go\nfunc ignored() {}\n```\n\n" +
		"- first item\n- second item\n\n" +
		"> a quoted line.\n")

	page, err := segmenter.Segment(ctx, raw, driven.FormatMarkdown)
	require.NoError(t, err)
	require.Len(t, page.Sections, 1)

	sentences := page.Sections[0].Sentences
	require.Len(t, sentences, 4)
	assert.Equal(t, "A bold claim with a link and .", sentences[0].Text)
	assert.Equal(t, "first item", sentences[1].Text)
	assert.Equal(t, "second item", sentences[2].Text)
	assert.Equal(t, "a quoted line.", sentences[3].Text)
}

func TestSegment_Markdown_Empty(t *testing.T) {
	segmenter := New()
	ctx := context.Background()

	_, err := segmenter.Segment(ctx, []byte("\n\n"), driven.FormatMarkdown)
	assert.ErrorIs(t, err, domain.ErrMalformedStructure)
}

func TestSegment_Plain(t *testing.T) {
	segmenter := New()
	ctx := context.Background()

	raw := []byte("First block. Still the first block.\n\nSecond block here.\n")

	page, err := segmenter.Segment(ctx, raw, driven.FormatPlain)
	require.NoError(t, err)

	assert.True(t, page.Title.IsEmpty())
	require.Len(t, page.Sections, 2)
	require.Len(t, page.Sections[0].Sentences, 2)
	assert.Equal(t, "First block.", page.Sections[0].Sentences[0].Text)
	assert.Equal(t, "Still the first block.", page.Sections[0].Sentences[1].Text)
	require.Len(t, page.Sections[1].Sentences, 1)
	assert.Equal(t, "Second block here.", page.Sections[1].Sentences[0].Text)
}

func TestSegment_JSON_RoundTrip(t *testing.T) {
	segmenter := New()
	ctx := context.Background()

	page := domain.StructuredPage{
		Title: domain.Sentence{Text: "Title"},
		Meta:  domain.Sentence{Text: "Meta description."},
		Sections: []domain.PageSection{
			{
				Heading:      domain.Sentence{Text: "Heading"},
				HeadingDepth: 2,
				Sentences: []domain.Sentence{
					{Text: "One sentence."},
					{Text: "Another; with an unterminated clause"},
				},
			},
		},
	}

	encoded, err := segmenter.Render(page, driven.FormatJSON)
	require.NoError(t, err)

	decoded, err := segmenter.Segment(ctx, encoded, driven.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, page, decoded)
}

func TestSegment_JSON_Invalid(t *testing.T) {
	segmenter := New()
	ctx := context.Background()

	_, err := segmenter.Segment(ctx, []byte("{not json"), driven.FormatJSON)
	assert.ErrorIs(t, err, domain.ErrMalformedStructure)
}

func TestSegment_UnsupportedFormat(t *testing.T) {
	segmenter := New()
	ctx := context.Background()

	_, err := segmenter.Segment(ctx, []byte("x"), driven.PageFormat("html"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRender_Markdown_Resegments(t *testing.T) {
	segmenter := New()
	ctx := context.Background()

	page := domain.StructuredPage{
		Title: domain.Sentence{Text: "Round Trip"},
		Meta:  domain.Sentence{Text: "A meta description."},
		Sections: []domain.PageSection{
			{
				Heading:      domain.Sentence{Text: "Section"},
				HeadingDepth: 2,
				Sentences: []domain.Sentence{
					{Text: "First sentence."},
					{Text: "Second sentence."},
				},
			},
		},
	}

	rendered, err := segmenter.Render(page, driven.FormatMarkdown)
	require.NoError(t, err)

	again, err := segmenter.Segment(ctx, rendered, driven.FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, page, again)
}

func TestRender_Markdown_HeadingDepthClamped(t *testing.T) {
	segmenter := New()

	page := domain.StructuredPage{
		Sections: []domain.PageSection{
			{
				Heading:      domain.Sentence{Text: "Implicit depth"},
				HeadingDepth: 0,
				Sentences:    []domain.Sentence{{Text: "Body."}},
			},
		},
	}

	rendered, err := segmenter.Render(page, driven.FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, string(rendered), "## Implicit depth")
}

func TestRender_Plain(t *testing.T) {
	segmenter := New()

	page := domain.StructuredPage{
		Title: domain.Sentence{Text: "Title"},
		Sections: []domain.PageSection{
			{
				Heading:   domain.Sentence{Text: "Heading"},
				Sentences: []domain.Sentence{{Text: "Body sentence."}},
			},
		},
	}

	rendered, err := segmenter.Render(page, driven.FormatPlain)
	require.NoError(t, err)
	assert.Equal(t, "Title\n\nHeading\nBody sentence.\n", string(rendered))
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "terminators",
			text: "One. Two! Three?",
			want: []string{"One.", "Two!", "Three?"},
		},
		{
			name: "trailing fragment kept",
			text: "Finished. And a trailing fragment",
			want: []string{"Finished.", "And a trailing fragment"},
		},
		{
			name: "punctuation runs stay together",
			text: "Wait... really?! Yes.",
			want: []string{"Wait... really?!", "Yes."},
		},
		{
			name: "empty",
			text: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.text))
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, driven.FormatMarkdown, FormatForPath("page.md"))
	assert.Equal(t, driven.FormatMarkdown, FormatForPath("README.MARKDOWN"))
	assert.Equal(t, driven.FormatJSON, FormatForPath("page.json"))
	assert.Equal(t, driven.FormatPlain, FormatForPath("notes.txt"))
	assert.Equal(t, driven.FormatPlain, FormatForPath("no-extension"))
}
