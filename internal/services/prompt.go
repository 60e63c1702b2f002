package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Category keywords used to steer image prompts toward the question's
// subject matter. Keys are lowercase substrings matched against the
// question text.
var categoryKeywordsEN = map[string]string{
	"capital":  "city skyline, famous landmarks, aerial view",
	"country":  "national landscape, iconic scenery",
	"river":    "majestic river winding through landscape",
	"mountain": "dramatic mountain peaks, alpine scenery",
	"ocean":    "deep blue ocean, waves, marine life",
	"animal":   "wildlife photography, natural habitat",
	"planet":   "outer space, planets, cosmic scenery",
	"history":  "historical scene, vintage atmosphere",
	"sport":    "dynamic sports action, stadium",
	"music":    "musical instruments, concert stage",
	"food":     "appetizing gourmet food, professional food photography",
	"science":  "laboratory, scientific visualization",
}

var categoryKeywordsPL = map[string]string{
	"stolica":  "city skyline, famous landmarks, aerial view",
	"kraj":     "national landscape, iconic scenery",
	"rzeka":    "majestic river winding through landscape",
	"góra":     "dramatic mountain peaks, alpine scenery",
	"ocean":    "deep blue ocean, waves, marine life",
	"zwierzę":  "wildlife photography, natural habitat",
	"planeta":  "outer space, planets, cosmic scenery",
	"historia": "historical scene, vintage atmosphere",
	"sport":    "dynamic sports action, stadium",
	"muzyka":   "musical instruments, concert stage",
	"jedzenie": "appetizing gourmet food, professional food photography",
	"nauka":    "laboratory, scientific visualization",
}

const promptStyle = "vibrant colors, high detail, vertical composition, no text, no letters, no words"

// BuildImagePrompt derives an image-generation prompt from question text.
// The question's language picks the keyword table; output prompts are
// always English because the image providers respond best to it.
func BuildImagePrompt(question string) string {
	lowered := strings.ToLower(question)

	keywords := categoryKeywordsEN
	info := whatlanggo.Detect(question)
	if info.Lang == whatlanggo.Pol {
		keywords = categoryKeywordsPL
	}

	// Sorted key order keeps the prompt stable across runs.
	keys := make([]string, 0, len(keywords))
	for keyword := range keywords {
		keys = append(keys, keyword)
	}
	sort.Strings(keys)

	var hints []string
	for _, keyword := range keys {
		if strings.Contains(lowered, keyword) {
			hints = append(hints, keywords[keyword])
		}
	}

	if len(hints) == 0 {
		return fmt.Sprintf("abstract background image inspired by the topic: %s, %s", question, promptStyle)
	}
	return fmt.Sprintf("%s, %s", strings.Join(hints, ", "), promptStyle)
}
