package generator

import (
	"fmt"
	"time"
)

// TrendAnalysisPrompt asks for a trend analysis post in the layout that
// text.Extract understands: title on the first line, body, then a
// "Sources:" section.
func TrendAnalysisPrompt(now time.Time) string {
	return fmt.Sprintf(`Today is %s. Analyze the latest trends from major news channels, big tech CEOs,
and famous thinkers from the past 48 hours. Create a comprehensive blog post that:

1. Identifies 3-5 key emerging trends
2. Provides analysis of each trend with supporting evidence
3. Includes quotes from relevant experts
4. Offers predictions for how these trends might evolve
5. Concludes with actionable insights

Structure the blog with:
- An engaging title on the first line, as a single "# " heading
- Introduction
- Trend sections with headers
- Conclusion
- A final line "Sources:" followed by the list of key sources analyzed

Make the content informative yet accessible to a general audience.`, now.Format("January 2, 2006"))
}
