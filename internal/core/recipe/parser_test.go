package recipe

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-chef/internal/pkg/common"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		delim string
		want  []Recipe
	}{
		{
			name:  "tomato soup with trailing empty segment",
			raw:   "###Tomato Soup\nPrep Time: 20 min\nIngredients:\n- tomato\n- salt\nPreparation:\n1. Boil\n2. Blend\n\n###",
			delim: "###",
			want: []Recipe{{
				Title:        "Tomato Soup",
				PrepTime:     "20 min",
				Ingredients:  []string{"tomato", "salt"},
				Preparation:  []string{"Boil", "Blend"},
				DisplayTitle: "1. Tomato Soup",
			}},
		},
		{
			name:  "whitespace only segment is dropped",
			raw:   "### \n\t \n###Salad\nIngredients:\n-lettuce\nPreparation:\n1.Toss",
			delim: "###",
			want: []Recipe{{
				Title:        "Salad",
				PrepTime:     UnknownPrepTime,
				Ingredients:  []string{"lettuce"},
				Preparation:  []string{"Toss"},
				DisplayTitle: "1. Salad",
			}},
		},
		{
			name:  "missing prep time",
			raw:   "###Toast\nIngredients:\n- bread\nPreparation:\n1. Toast it",
			delim: "###",
			want: []Recipe{{
				Title:        "Toast",
				PrepTime:     UnknownPrepTime,
				Ingredients:  []string{"bread"},
				Preparation:  []string{"Toast it"},
				DisplayTitle: "1. Toast",
			}},
		},
		{
			name:  "ingredients label immediately followed by preparation",
			raw:   "###Water\nPrep Time: 1 min\nIngredients:\nPreparation:\n1. Pour",
			delim: "###",
			want: []Recipe{{
				Title:        "Water",
				PrepTime:     "1 min",
				Ingredients:  []string{},
				Preparation:  []string{"Pour"},
				DisplayTitle: "1. Water",
			}},
		},
		{
			name:  "no preparation label",
			raw:   "###Snack\nPrep Time: 5 min\nIngredients:\n- nuts\n- raisins",
			delim: "###",
			want: []Recipe{{
				Title:        "Snack",
				PrepTime:     "5 min",
				Ingredients:  []string{"nuts", "raisins"},
				Preparation:  []string{},
				DisplayTitle: "1. Snack",
			}},
		},
		{
			name:  "no labels at all",
			raw:   "###Mystery dish\nsome text",
			delim: "###",
			want: []Recipe{{
				Title:        "Mystery dish",
				PrepTime:     UnknownPrepTime,
				Ingredients:  []string{},
				Preparation:  []string{},
				DisplayTitle: "1. Mystery dish",
			}},
		},
		{
			name:  "preparation before ingredients",
			raw:   "###Odd\nPreparation:\n1. Mix\nIngredients:\n- flour",
			delim: "###",
			want: []Recipe{{
				Title:        "Odd",
				PrepTime:     UnknownPrepTime,
				Ingredients:  []string{},
				Preparation:  []string{"Mix", "Ingredients:", "- flour"},
				DisplayTitle: "1. Odd",
			}},
		},
		{
			name:  "case insensitive labels and multi digit ordinals",
			raw:   "###Stew\nPREP TIME: 2 hours\nINGREDIENTS:\n-   beef\n\n- carrot\nPREPARATION:\n9. Chop\n12.   Simmer",
			delim: "###",
			want: []Recipe{{
				Title:        "Stew",
				PrepTime:     "2 hours",
				Ingredients:  []string{"beef", "carrot"},
				Preparation:  []string{"Chop", "Simmer"},
				DisplayTitle: "1. Stew",
			}},
		},
		{
			name:  "value after first colon only",
			raw:   "###Rice\nPrep Time: 10 min: approx\nIngredients:\n- rice",
			delim: "###",
			want: []Recipe{{
				Title:        "Rice",
				PrepTime:     "10 min: approx",
				Ingredients:  []string{"rice"},
				Preparation:  []string{},
				DisplayTitle: "1. Rice",
			}},
		},
		{
			name:  "crlf line endings",
			raw:   "###Eggs\r\nPrep Time: 3 min\r\nIngredients:\r\n- egg\r\nPreparation:\r\n1. Fry\r\n",
			delim: "###",
			want: []Recipe{{
				Title:        "Eggs",
				PrepTime:     "3 min",
				Ingredients:  []string{"egg"},
				Preparation:  []string{"Fry"},
				DisplayTitle: "1. Eggs",
			}},
		},
		{
			name:  "custom delimiter",
			raw:   "@@A\nPrep Time: 1 min\n@@B\nPrep Time: 2 min",
			delim: "@@",
			want: []Recipe{
				{Title: "A", PrepTime: "1 min", Ingredients: []string{}, Preparation: []string{}, DisplayTitle: "1. A"},
				{Title: "B", PrepTime: "2 min", Ingredients: []string{}, Preparation: []string{}, DisplayTitle: "2. B"},
			},
		},
		{
			name:  "text before the first delimiter is discarded",
			raw:   "Here are four recipes:\n###Soup\nPrep Time: 5 min",
			delim: "###",
			want: []Recipe{{
				Title:        "Soup",
				PrepTime:     "5 min",
				Ingredients:  []string{},
				Preparation:  []string{},
				DisplayTitle: "1. Soup",
			}},
		},
		{
			name:  "no delimiter at all",
			raw:   "Sorry, I cannot help with that.",
			delim: "###",
			want:  []Recipe{},
		},
		{
			name:  "title line containing a label keyword",
			raw:   "###Ingredients: Soup\nIngredients:\n- water\nPreparation:\n1. Boil",
			delim: "###",
			want: []Recipe{{
				Title:        "Ingredients: Soup",
				PrepTime:     UnknownPrepTime,
				Ingredients:  []string{"Ingredients:", "water"},
				Preparation:  []string{"Boil"},
				DisplayTitle: "1. Ingredients: Soup",
			}},
		},
		{
			name:  "empty text",
			raw:   "",
			delim: "###",
			want:  []Recipe{},
		},
		{
			name:  "only delimiters",
			raw:   "######   ###\n\n###",
			delim: "###",
			want:  []Recipe{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw, tt.delim)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_PreservesOrderAndCount(t *testing.T) {
	titles := []string{"Pancakes", "Omelette", "Curry", "Pasta"}
	var b strings.Builder
	for _, title := range titles {
		b.WriteString("###" + title + "\nPrep Time: 10 min\nIngredients:\n- x\nPreparation:\n1. y\n\n")
	}
	b.WriteString(TrailingMessage)

	got, err := Parse(b.String(), "###")
	require.NoError(t, err)
	require.Len(t, got, len(titles))
	for i, title := range titles {
		assert.Equal(t, title, got[i].Title)
		assert.Equal(t, displayTitle(i+1, title), got[i].DisplayTitle)
	}
}

func TestParse_Idempotent(t *testing.T) {
	raw := "###Soup\nPrep Time: 5 min\nIngredients:\n- a\nPreparation:\n1. b\n###Bread\nIngredients:\n- flour"
	first, err := Parse(raw, "###")
	require.NoError(t, err)
	second, err := Parse(raw, "###")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first, second))
}

func TestParse_MalformedInput(t *testing.T) {
	_, err := Parse("###x", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))

	_, err = ParseNullable(nil, "###")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMalformedInput))

	raw := "###Tea\nPrep Time: 3 min"
	got, err := ParseNullable(&raw, "###")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tea", got[0].Title)
}

func TestRecipe_Record(t *testing.T) {
	r := Recipe{Title: "Tea", PrepTime: "3 min", DisplayTitle: "1. Tea"}
	got := r.Record()
	assert.Equal(t, RecipeData{Title: "Tea", PrepTime: "3 min", Ingredients: []string{}, Preparation: []string{}}, got)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt([]string{"tomato", " ", "salt"}, 4, "###")
	assert.Contains(t, prompt, "Generate four recipes using some of these ingredients: tomato, salt.")
	assert.Contains(t, prompt, `prefixed with "###"`)
	assert.Contains(t, prompt, TrailingMessage)

	assert.Contains(t, BuildPrompt([]string{"egg"}, 9, "@@"), "Generate 9 recipes")
}

func TestStripTrailingMessage(t *testing.T) {
	raw := "###Tea\nPreparation:\n1. Steep\n\n" + TrailingMessage
	got, err := Parse(stripTrailingMessage(raw), "###")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Steep"}, got[0].Preparation)
}
