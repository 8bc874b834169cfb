// Package avatar builds deterministic DiceBear avatar URLs.
package avatar

import "net/url"

type Variant string

const (
	Initials      Variant = "initials"
	BotttsNeutral Variant = "botttsNeutral"
)

const baseURL = "https://api.dicebear.com/9.x/"

// URI returns the avatar image for seed. The same seed always yields the same image.
func URI(seed string, variant Variant) string {
	q := url.Values{}
	q.Set("seed", seed)
	if variant == Initials {
		q.Set("fontWeight", "500")
		q.Set("fontSize", "42")
	}
	return baseURL + string(variant) + "/svg?" + q.Encode()
}

// ForUser prefers a stored image and falls back to initials of name.
func ForUser(image *string, name string) string {
	if image != nil && *image != "" {
		return *image
	}
	return URI(name, Initials)
}

// ForAgent always renders the bot style; agents carry no uploaded image.
func ForAgent(name string) string {
	return URI(name, BotttsNeutral)
}
