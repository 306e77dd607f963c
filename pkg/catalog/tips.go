package catalog

import (
	"fmt"
	"strings"
)

// ListingTips is a markdown note shown when the model listing is unavailable.
func ListingTips() string {
	var b strings.Builder

	b.WriteString("# Finding model IDs\n\n")
	b.WriteString("Direct model listing isn't available. Some other options:\n\n")
	fmt.Fprintf(&b, "1. Check the Nebius AI Studio dashboard: <%s>\n", DashboardURL)
	fmt.Fprintf(&b, "2. Check the Nebius documentation: <%s>\n", DocsURL)
	b.WriteString("3. Common model ID formats:\n")
	for _, id := range CommonModelIDs {
		fmt.Fprintf(&b, "   - `%s`\n", id)
	}
	b.WriteString("4. Test a model ID directly: `modelprobe probe 'model-id'`\n")

	return b.String()
}

// ConnectionTips is a markdown checklist shown when the endpoint cannot be
// reached at all.
func ConnectionTips(envVar string) string {
	return fmt.Sprintf(`Make sure:

1. Your `+"`%s`"+` is correct
2. You have internet connectivity
3. The Nebius API is accessible
`, envVar)
}

// NotFoundTips is a markdown note for a model the endpoint does not know.
// When the ID carries a vendor prefix the bare name is offered as well.
func NotFoundTips(model string) string {
	var b strings.Builder

	b.WriteString("To find available models:\n\n")
	fmt.Fprintf(&b, "1. Check <%s>\n", DashboardURL)
	fmt.Fprintf(&b, "2. Check <%s>\n", DocsURL)

	if base := baseName(model); base != model {
		fmt.Fprintf(&b, "3. Try the ID without its prefix: `%s`\n", base)
	} else {
		b.WriteString("3. Try different model IDs, for example with an `org/` prefix\n")
	}

	return b.String()
}
