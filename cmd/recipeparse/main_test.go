package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-chef/internal/core/recipe"
)

const sample = "###Tomato Soup\nPrep Time: 20 min\nIngredients:\n- tomato\nPreparation:\n1. Boil\n###Toast\nIngredients:\n- bread\nPreparation:\n1. Toast"

func run(t *testing.T, stdin string, args ...string) ([]recipe.Recipe, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err != nil {
		return nil, err
	}

	var recipes []recipe.Recipe
	require.NoError(t, json.Unmarshal(out.Bytes(), &recipes))
	return recipes, nil
}

func TestRecipeParse_Stdin(t *testing.T) {
	recipes, err := run(t, sample)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Tomato Soup", recipes[0].Title)
	assert.Equal(t, recipe.UnknownPrepTime, recipes[1].PrepTime)
	assert.Equal(t, "2. Toast", recipes[1].DisplayTitle)
}

func TestRecipeParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "completion.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.ReplaceAll(sample, "###", "@@")), 0o644))

	recipes, err := run(t, "", "--delimiter", "@@", path)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, []string{"bread"}, recipes[1].Ingredients)
}

func TestRecipeParse_EmptyInputPrintsEmptyArray(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(""), &out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "[]", strings.TrimSpace(out.String()))
}

func TestRecipeParse_Errors(t *testing.T) {
	_, err := run(t, sample, "--delimiter", "")
	require.Error(t, err)

	_, err = run(t, "", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
