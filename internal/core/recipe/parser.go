package recipe

import (
	"fmt"
	"regexp"
	"strings"

	"pantry-chef/internal/pkg/common"
)

// ErrMalformedInput 解析器呼叫參數不合法（nil 內容或空分隔符）
var ErrMalformedInput = common.ErrMalformedInput

const (
	labelPrepTime    = "prep time:"
	labelIngredients = "ingredients:"
	labelPreparation = "preparation:"
)

var (
	bulletPrefix  = regexp.MustCompile(`^-\s*`)
	ordinalPrefix = regexp.MustCompile(`^\d+\.\s*`)
)

// Parse 將以分隔符切開的模型輸出轉為食譜列表
// 內容缺漏只會退化為預設值，不會回傳錯誤
func Parse(raw, delimiter string) ([]Recipe, error) {
	if delimiter == "" {
		return nil, ErrMalformedInput.Wrap(fmt.Errorf("empty delimiter"))
	}

	recipes := make([]Recipe, 0)
	// 第一個分隔符之前的文字（模型的開場白）不屬於任何食譜
	parts := strings.Split(raw, delimiter)
	for _, segment := range parts[1:] {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		r := parseSegment(segment)
		r.DisplayTitle = displayTitle(len(recipes)+1, r.Title)
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// ParseNullable 同 Parse，但 raw 可能為 nil（上游 content 為 null）
func ParseNullable(raw *string, delimiter string) ([]Recipe, error) {
	if raw == nil {
		return nil, ErrMalformedInput.Wrap(fmt.Errorf("nil completion text"))
	}
	return Parse(*raw, delimiter)
}

func parseSegment(segment string) Recipe {
	lines := strings.Split(segment, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	r := Recipe{
		Title:       strings.TrimSpace(lines[0]),
		PrepTime:    UnknownPrepTime,
		Ingredients: []string{},
		Preparation: []string{},
	}

	if i := findLabel(lines, labelPrepTime); i >= 0 {
		line := lines[i]
		if value := strings.TrimSpace(line[strings.Index(line, ":")+1:]); value != "" {
			r.PrepTime = value
		}
	}

	ingIdx := findLabel(lines, labelIngredients)
	prepIdx := findLabel(lines, labelPreparation)

	if ingIdx >= 0 {
		end := len(lines)
		if prepIdx >= 0 {
			end = prepIdx
		}
		if ingIdx+1 < end {
			r.Ingredients = cleanLines(lines[ingIdx+1:end], bulletPrefix)
		}
	}

	if prepIdx >= 0 {
		r.Preparation = cleanLines(lines[prepIdx+1:], ordinalPrefix)
	}

	return r
}

// findLabel 回傳第一個包含標籤的行索引（不分大小寫），找不到回傳 -1
func findLabel(lines []string, label string) int {
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), label) {
			return i
		}
	}
	return -1
}

func cleanLines(lines []string, prefix *regexp.Regexp) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, prefix.ReplaceAllString(line, ""))
	}
	return out
}
