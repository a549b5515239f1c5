package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"go", []string{"go"}},
		{" algo , sort,  ,search ", []string{"algo", "sort", "search"}},
		{"a,a", []string{"a", "a"}},
		{",,,", []string{}},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ParseTags(tt.in), tt.in)
	}
}

func TestNotePatch_Apply(t *testing.T) {
	n := Note{Title: "t", Description: "d", Code: "c", Language: "Go", Tags: []string{"x"}}
	title, tags := "T2", []string{"y", "z"}
	p := NotePatch{Title: &title, Tags: &tags}
	require.False(t, p.Empty())

	p.Apply(&n)
	require.Equal(t, "T2", n.Title)
	require.Equal(t, "d", n.Description)
	require.Equal(t, "c", n.Code)
	require.Equal(t, "Go", n.Language)
	require.Equal(t, []string{"y", "z"}, n.Tags)

	tags[0] = "mutated"
	require.Equal(t, "y", n.Tags[0])

	require.True(t, NotePatch{}.Empty())
}

func TestNote_CloneAndJSON(t *testing.T) {
	n := Note{ID: uuid.Must(uuid.NewV4()), Title: "t", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	c := n.Clone()
	require.NotNil(t, c.Tags)

	b, err := json.Marshal(c)
	require.NoError(t, err)
	require.Contains(t, string(b), `"userId"`)
	require.Contains(t, string(b), `"createdAt":"2024-01-02T03:04:05Z"`)
	require.Contains(t, string(b), `"tags":[]`)
}

func TestAccount_PublicDropsSecret(t *testing.T) {
	a := Account{ID: uuid.Must(uuid.NewV4()), Name: "Ada", Email: "a@b.c", Secret: "$argon2id$..."}
	b, err := json.Marshal(a.Public())
	require.NoError(t, err)
	require.NotContains(t, string(b), "secret")
}

func TestIsSuggestedLanguage(t *testing.T) {
	require.True(t, IsSuggestedLanguage("Go"))
	require.True(t, IsSuggestedLanguage("C#"))
	require.False(t, IsSuggestedLanguage("go"))
}
