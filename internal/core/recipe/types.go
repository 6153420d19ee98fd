package recipe

import (
	"strconv"
	"time"
)

// UnknownPrepTime 找不到準備時間時的預設值
const UnknownPrepTime = "Unknown"

// Recipe 解析後的結構化食譜
type Recipe struct {
	Title        string   `json:"title"`
	PrepTime     string   `json:"prepTime"`
	Ingredients  []string `json:"ingredients"`
	Preparation  []string `json:"preparation"`
	DisplayTitle string   `json:"displayTitle,omitempty"`
}

// Record 轉為可儲存的資料（不含 displayTitle）
func (r Recipe) Record() RecipeData {
	return RecipeData{
		Title:       r.Title,
		PrepTime:    r.PrepTime,
		Ingredients: nonNil(r.Ingredients),
		Preparation: nonNil(r.Preparation),
	}
}

// RecipeData 儲存時寫入的四個欄位
type RecipeData struct {
	Title       string   `json:"title"`
	PrepTime    string   `json:"prepTime"`
	Ingredients []string `json:"ingredients"`
	Preparation []string `json:"preparation"`
}

// SavedRecipe 已儲存的食譜
type SavedRecipe struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PrepTime    string    `json:"prepTime"`
	Ingredients []string  `json:"ingredients"`
	Preparation []string  `json:"preparation"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GenerateResult 食譜生成結果
type GenerateResult struct {
	Recipes []Recipe `json:"recipes"`
	Message string   `json:"message"`
	Empty   bool     `json:"empty"`
}

// SaveResult 批次儲存中單筆的結果
type SaveResult struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

func displayTitle(index int, title string) string {
	return strconv.Itoa(index) + ". " + title
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
