// Package book defines the picture-book data model shared by the server
// endpoints and the client-side builder. A Book moves through the wizard
// stages in order: brief, concepts, characters, outline, text, image
// prompts, images, export. Each stage only fills in its own fields.
package book

import (
	"strings"
	"time"
)

// Stage identifies one step of the builder pipeline.
type Stage string

const (
	StageBrief      Stage = "brief"
	StageConcepts   Stage = "concepts"
	StageCharacters Stage = "characters"
	StageOutline    Stage = "outline"
	StageText       Stage = "text"
	StagePrompts    Stage = "prompts"
	StageImages     Stage = "images"
	StageExport     Stage = "export"
)

// Stages lists all pipeline stages in order.
var Stages = []Stage{
	StageBrief,
	StageConcepts,
	StageCharacters,
	StageOutline,
	StageText,
	StagePrompts,
	StageImages,
	StageExport,
}

// Brief captures the initial creative brief for a book.
type Brief struct {
	Audience     string `json:"audience"`
	AgeRange     string `json:"age_range"`
	Theme        string `json:"theme"`
	Premise      string `json:"premise"`
	ReadingLevel string `json:"reading_level,omitempty"`
	PageCount    int    `json:"page_count"`
}

// Concept is one candidate story concept generated from the brief.
type Concept struct {
	Title      string `json:"title"`
	Logline    string `json:"logline"`
	StyleNotes string `json:"style_notes,omitempty"`
}

// Character describes one recurring character.
// VisualDescription feeds the image prompts so the character stays
// consistent across pages.
type Character struct {
	Name              string `json:"name"`
	Role              string `json:"role"`
	Description       string `json:"description"`
	VisualDescription string `json:"visual_description"`
}

// ImageVariant is one generated image for a page.
type ImageVariant struct {
	URL   string `json:"url"`
	Model string `json:"model"`
}

// Page holds the per-page artifacts across all stages.
type Page struct {
	Index       int            `json:"index"`
	Outline     string         `json:"outline,omitempty"`
	Text        string         `json:"text,omitempty"`
	ImagePrompt string         `json:"image_prompt,omitempty"`
	Images      []ImageVariant `json:"images,omitempty"`
}

// Book is the complete builder document.
type Book struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Stage       Stage       `json:"stage"` // furthest completed stage
	Brief       Brief       `json:"brief"`
	Concepts    []Concept   `json:"concepts,omitempty"`
	Concept     *Concept    `json:"concept,omitempty"` // selected concept
	Characters  []Character `json:"characters,omitempty"`
	Pages       []Page      `json:"pages,omitempty"`
	AspectRatio string      `json:"aspect_ratio,omitempty"`
	ImageModels []string    `json:"image_models,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// PageByIndex returns a pointer to the page with the given index, or nil.
func (b *Book) PageByIndex(idx int) *Page {
	for i := range b.Pages {
		if b.Pages[i].Index == idx {
			return &b.Pages[i]
		}
	}
	return nil
}

// EnsurePages grows b.Pages to n entries with sequential indices.
// Existing page content is preserved.
func (b *Book) EnsurePages(n int) {
	for len(b.Pages) < n {
		b.Pages = append(b.Pages, Page{Index: len(b.Pages)})
	}
}

// OutlineText concatenates all page outlines in page order.
// Used as the staleness fingerprint input for text generation.
func (b *Book) OutlineText() string {
	var sb strings.Builder
	for i := range b.Pages {
		sb.WriteString(b.Pages[i].Outline)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PageText concatenates all page texts in page order.
// Used as the staleness fingerprint input for image prompt generation.
func (b *Book) PageText() string {
	var sb strings.Builder
	for i := range b.Pages {
		sb.WriteString(b.Pages[i].Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// CharacterSheet renders the book's character list as a compact text
// block for inclusion in stage prompts.
func (b *Book) CharacterSheet() string {
	return CharacterSheet(b.Characters)
}

// CharacterSheet renders a character list as a compact text block.
func CharacterSheet(chars []Character) string {
	var sb strings.Builder
	for _, c := range chars {
		sb.WriteString(c.Name)
		if c.Role != "" {
			sb.WriteString(" (")
			sb.WriteString(c.Role)
			sb.WriteString(")")
		}
		sb.WriteString(": ")
		sb.WriteString(c.Description)
		if c.VisualDescription != "" {
			sb.WriteString(" Visual: ")
			sb.WriteString(c.VisualDescription)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
