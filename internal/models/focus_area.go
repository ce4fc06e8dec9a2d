package models

import "github.com/gosimple/slug"

type FocusArea struct {
	ID          string   `json:"id" dynamodbav:"id" yaml:"id"`
	Title       string   `json:"title" dynamodbav:"title" yaml:"title"`
	Description string   `json:"description,omitempty" dynamodbav:"description,omitempty" yaml:"description"`
	ExampleReps []string `json:"exampleReps,omitempty" dynamodbav:"exampleReps,omitempty" yaml:"example_reps"`
}

// FocusAreaID derives the stable id of a focus area from its title.
func FocusAreaID(title string) string {
	return slug.Make(title)
}

// FocusAreaCatalog resolves focus areas by id or by title. It never touches storage.
type FocusAreaCatalog struct {
	byID    map[string]FocusArea
	byTitle map[string]FocusArea
}

func NewFocusAreaCatalog(areas []FocusArea) *FocusAreaCatalog {
	c := &FocusAreaCatalog{
		byID:    make(map[string]FocusArea, len(areas)),
		byTitle: make(map[string]FocusArea, len(areas)),
	}
	for _, a := range areas {
		if a.ID == "" {
			a.ID = FocusAreaID(a.Title)
		}
		c.byID[a.ID] = a
		c.byTitle[slug.Make(a.Title)] = a
	}
	return c
}

// Title returns the display title for id, or id itself when unknown.
func (c *FocusAreaCatalog) Title(id string) string {
	if a, ok := c.byID[id]; ok {
		return a.Title
	}
	return id
}

// Resolve accepts either an id or a title and returns the canonical id.
func (c *FocusAreaCatalog) Resolve(value string) (string, bool) {
	if a, ok := c.byID[value]; ok {
		return a.ID, true
	}
	if a, ok := c.byTitle[slug.Make(value)]; ok {
		return a.ID, true
	}
	return "", false
}

// Normalize maps a mixed list of ids and titles to unique ids, keeping order.
// Unknown values are returned separately.
func (c *FocusAreaCatalog) Normalize(values []string) (ids []string, unknown []string) {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		id, ok := c.Resolve(v)
		if !ok {
			unknown = append(unknown, v)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, unknown
}

// Titles resolves ids to titles in order.
func (c *FocusAreaCatalog) Titles(ids []string) []string {
	titles := make([]string, 0, len(ids))
	for _, id := range ids {
		titles = append(titles, c.Title(id))
	}
	return titles
}
