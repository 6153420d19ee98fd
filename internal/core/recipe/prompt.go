package recipe

import (
	"fmt"
	"strings"

	"pantry-chef/internal/pkg/common"
)

// TrailingMessage 附在食譜列表之後的固定結語
const TrailingMessage = "Feel free to adjust the seasoning and portion sizes to suit your tastes! Enjoy your cooking!"

// DefaultDelimiter 預設的食譜分隔符
const DefaultDelimiter = "###"

var countWords = map[int]string{1: "one", 2: "two", 3: "three", 4: "four", 5: "five", 6: "six"}

// BuildPrompt 組合食譜生成提示詞
func BuildPrompt(names []string, count int, delimiter string) string {
	n, ok := countWords[count]
	if !ok {
		n = fmt.Sprint(count)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %s recipes using some of these ingredients: %s. For each recipe, provide:\n", n, common.JoinNames(names))
	fmt.Fprintf(&b, "1. A title prefixed with %q\n", delimiter)
	b.WriteString("2. A line starting with \"Prep Time:\"\n")
	b.WriteString("3. An \"Ingredients:\" line followed by the ingredients (including quantities), one per line prefixed with \"- \"\n")
	b.WriteString("4. A \"Preparation:\" line followed by numbered preparation steps\n")
	b.WriteString("5. A blank line between each recipe\n\n")
	fmt.Fprintf(&b, "After the last recipe, add the line: %q\n\n", TrailingMessage)
	b.WriteString("Do not include any other text or formatting.")
	return b.String()
}

// stripTrailingMessage 移除模型附在最後一道食譜之後的結語，避免被併入步驟
func stripTrailingMessage(raw string) string {
	if i := strings.LastIndex(raw, TrailingMessage); i >= 0 {
		return raw[:i] + raw[i+len(TrailingMessage):]
	}
	return raw
}
