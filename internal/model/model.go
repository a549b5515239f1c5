// Package model defines domain entities used by services and repositories.
package model

import (
	"slices"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// User is the public identity of an account. It never carries the secret.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Account is a stored credential record.
type Account struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"` // unique, exact match
	Secret    string    `json:"secret"` // encoded argon2id hash, see crypto.Hasher
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips the secret.
func (a Account) Public() User {
	return User{ID: a.ID, Name: a.Name, Email: a.Email}
}

// Note is a user-owned record combining free text, a code snippet, a language label and tags.
type Note struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Language    string    `json:"language"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no slices with n.
func (n Note) Clone() Note {
	n.Tags = slices.Clone(n.Tags)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return n
}

// NoteFields are the user-editable fields of a new note.
type NoteFields struct {
	Title       string
	Description string
	Code        string
	Language    string
	Tags        []string
}

// NotePatch is a partial update; nil fields are left unchanged.
type NotePatch struct {
	Title       *string
	Description *string
	Code        *string
	Language    *string
	Tags        *[]string
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Code == nil && p.Language == nil && p.Tags == nil
}

// Apply merges the patch into n.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Code != nil {
		n.Code = *p.Code
	}
	if p.Language != nil {
		n.Language = *p.Language
	}
	if p.Tags != nil {
		n.Tags = slices.Clone(*p.Tags)
	}
}

// AllLanguages is the language filter value that disables filtering.
const AllLanguages = "all"

// SuggestedLanguages is offered to users; any other language label is accepted too.
var SuggestedLanguages = []string{
	"JavaScript",
	"TypeScript",
	"Python",
	"Java",
	"C#",
	"PHP",
	"Ruby",
	"Go",
	"Swift",
	"Kotlin",
	"Rust",
	"C++",
	"C",
	"HTML",
	"CSS",
	"SQL",
	"Other",
}

// IsSuggestedLanguage reports whether lang is in SuggestedLanguages.
func IsSuggestedLanguage(lang string) bool {
	return slices.Contains(SuggestedLanguages, lang)
}

// ParseTags splits comma-separated input, trims entries and drops empty ones. Order is kept.
func ParseTags(input string) []string {
	tags := []string{}
	for _, t := range strings.Split(input, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
