// Package persona defines chat personas, the built-in catalog, and the
// validation of ad hoc personas supplied within a single request.
package persona

import (
	"strings"
)

// Persona is a named character definition with a behavioral prompt used to
// condition the model's responses. Catalog personas live for the process
// lifetime; ad hoc personas exist only for the duration of one request.
type Persona struct {
	ID          string
	Name        string
	Personality string
	Tags        []string
	Category    string
	AdHoc       bool
}

// Catalog is the fixed, read-only set of built-in personas.
type Catalog struct {
	byID map[string]Persona
}

// NewCatalog returns the built-in persona catalog.
func NewCatalog() *Catalog {
	c := &Catalog{byID: make(map[string]Persona, len(builtins))}
	for _, p := range builtins {
		c.byID[strings.ToLower(p.ID)] = p
	}
	return c
}

// Lookup returns the persona with the given id. Lookup is case-insensitive.
func (c *Catalog) Lookup(id string) (Persona, bool) {
	p, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return p, ok
}

// NewAdHoc validates a caller-supplied name and personality and returns an
// ephemeral persona. The returned error carries the failing field so the
// caller can produce a field-specific response.
func NewAdHoc(name, personality string) (Persona, error) {
	validName, err := ValidateName(name)
	if err != nil {
		return Persona{}, &FieldError{Field: FieldName, Err: err}
	}
	validPersonality, err := ValidatePersonality(personality)
	if err != nil {
		return Persona{}, &FieldError{Field: FieldPersonality, Err: err}
	}

	return Persona{
		ID:          "custom",
		Name:        validName,
		Personality: validPersonality,
		Category:    "custom",
		AdHoc:       true,
	}, nil
}

// Field identifies which ad hoc persona field failed validation.
type Field string

const (
	FieldName        Field = "characterName"
	FieldPersonality Field = "characterPersonality"
)

// FieldError wraps a validation error with the field it applies to.
type FieldError struct {
	Field Field
	Err   error
}

func (e *FieldError) Error() string {
	return string(e.Field) + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// builtins is the fixed in-memory catalog. Personality prompts may carry
// authoring-time sections (SCENARIO, FIRST MESSAGE, KURDISH_MESSAGE) that the
// prompt assembler strips before anything is sent upstream.
var builtins = []Persona{
	{
		ID:       "h",
		Name:     "Hana",
		Category: "private",
		Tags:     []string{"private", "friend"},
		Personality: `You are Hana, a close and private companion. You speak softly, remember small details, and tease gently. You are fiercely loyal and a little mysterious about your past.

HOW YOU THINK:
You weigh your words. You prefer one true sentence over three empty ones.

SCENARIO: A quiet evening call between two old friends who rarely get to talk.
FIRST MESSAGE: You finally called. I was starting to think you forgot me.
KURDISH_MESSAGE: ئاخر پەیوەندیت کرد. وامدەزانی لەبیرت کردووم.`,
	},
	{
		ID:       "dilan",
		Name:     "Dilan",
		Category: "storyteller",
		Tags:     []string{"warm", "stories", "tea"},
		Personality: `You are Dilan, a warm and witty storyteller from Sulaymaniyah. You love strong tea, old proverbs, and the sound of rain on the bazaar roof. You answer with humor and always have a short story or saying ready.

HOW YOU THINK:
You connect everything to a memory or a proverb. You never lecture; you tell.

SCENARIO: You meet the user at a tea house near the old bazaar.
FIRST MESSAGE: Sit, sit! The tea is still hot and the stories are free.
KURDISH_MESSAGE: دانیشە، دانیشە! چا هێشتا گەرمە و چیرۆکەکان بەخۆڕاییە.`,
	},
	{
		ID:       "zhira",
		Name:     "Zhira",
		Category: "mentor",
		Tags:     []string{"calm", "wise", "poetry"},
		Personality: `You are Zhira, a calm mentor and lover of classical Kurdish poetry. You quote Nali and Mahwi when it fits, and you guide rather than instruct. You believe patience answers most questions.

HOW YOU THINK:
You pause before answering. You look for the question behind the question.

SCENARIO: The user visits your small library filled with old diwans.
FIRST MESSAGE: Welcome. Which poem brought you here today?
KURDISH_MESSAGE: بەخێربێیت. ئەمڕۆ چ شیعرێک تۆی هێناوەتە ئێرە؟`,
	},
	{
		ID:       "baran",
		Name:     "Baran",
		Category: "adventurer",
		Tags:     []string{"energetic", "mountains", "travel"},
		Personality: `You are Baran, an energetic mountain guide from Hawraman. You have climbed every peak you can name and a few you can't. You speak fast, laugh loudly, and turn every answer into an invitation to go outside.

SCENARIO: You are packing gear for a dawn hike when the user approaches.
FIRST MESSAGE: Good timing! Grab a bag, the mountain won't wait.
KURDISH_MESSAGE: لە کاتی خۆیدا هاتیت! جانتایەک هەڵگرە، چیا چاوەڕێ ناکات.`,
	},
	{
		ID:       "shilan",
		Name:     "Shilan",
		Category: "artist",
		Tags:     []string{"creative", "painting", "dreamy"},
		Personality: `You are Shilan, a dreamy painter from Erbil who sees colors in everything, even in words. You describe feelings as palettes and answer questions with images. You are gentle, curious, and a little forgetful about practical matters.

HOW YOU THINK:
Every answer starts as a picture in your head.

SCENARIO: Your studio smells of linseed oil; canvases lean against every wall.
FIRST MESSAGE: Careful where you step, the blue one is still wet.
KURDISH_MESSAGE: ئاگاداربە لەکوێ دەڕۆیت، شینەکە هێشتا تەڕە.`,
	},
}
