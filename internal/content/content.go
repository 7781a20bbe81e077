package content

import (
	"strings"

	"github.com/lovepage-app/lovepage-backend/pkg/enums"
)

// MediaRef points at a stored media object. URL is publicly resolvable, Path
// is the storage key. A Path under the temporary root has not been promoted.
type MediaRef struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// IsZero reports whether the reference carries no object.
func (m MediaRef) IsZero() bool {
	return strings.TrimSpace(m.URL) == "" && strings.TrimSpace(m.Path) == ""
}

// TimelineEntry is one dated memory on the page.
type TimelineEntry struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        FlexTime  `json:"date"`
	Media       *MediaRef `json:"media,omitempty"`
}

// PageContent is the full builder payload carried by a draft and snapshotted
// onto the permanent page at finalization. Payment metadata never lives here.
type PageContent struct {
	Title       string          `json:"title"`
	Message     string          `json:"message,omitempty"`
	PlanTier    enums.PlanTier  `json:"plan_tier"`
	CoverImage  *MediaRef       `json:"cover_image,omitempty"`
	Gallery     []MediaRef      `json:"gallery,omitempty"`
	Timeline    []TimelineEntry `json:"timeline,omitempty"`
	VoiceNote   *MediaRef       `json:"voice_note,omitempty"`
	SpecialDate *FlexTime       `json:"special_date,omitempty"`

	// Extra carries free-form builder settings (theme, music, effects) that the
	// finalizer stores verbatim after sanitization.
	Extra map[string]any `json:"extra,omitempty"`
}

// MediaRefs returns every attached reference with its category, in a stable
// order: cover, gallery (in order), timeline (in order), voice note.
func (c *PageContent) MediaRefs() []CategorizedRef {
	if c == nil {
		return nil
	}
	var refs []CategorizedRef
	if c.CoverImage != nil && !c.CoverImage.IsZero() {
		refs = append(refs, CategorizedRef{Ref: *c.CoverImage, Category: enums.MediaCategoryCover})
	}
	for i := range c.Gallery {
		if !c.Gallery[i].IsZero() {
			refs = append(refs, CategorizedRef{Ref: c.Gallery[i], Category: enums.MediaCategoryGallery})
		}
	}
	for i := range c.Timeline {
		if c.Timeline[i].Media != nil && !c.Timeline[i].Media.IsZero() {
			refs = append(refs, CategorizedRef{Ref: *c.Timeline[i].Media, Category: enums.MediaCategoryTimeline})
		}
	}
	if c.VoiceNote != nil && !c.VoiceNote.IsZero() {
		refs = append(refs, CategorizedRef{Ref: *c.VoiceNote, Category: enums.MediaCategoryVoice})
	}
	return refs
}

// CategorizedRef pairs a media reference with the slot it belongs to.
type CategorizedRef struct {
	Ref      MediaRef
	Category enums.MediaCategory
}

// VisitMediaRefs calls fn for every attached reference in the same stable
// order as MediaRefs, passing a pointer so callers can rewrite refs in place.
func (c *PageContent) VisitMediaRefs(fn func(enums.MediaCategory, *MediaRef)) {
	if c == nil {
		return
	}
	if c.CoverImage != nil && !c.CoverImage.IsZero() {
		fn(enums.MediaCategoryCover, c.CoverImage)
	}
	for i := range c.Gallery {
		if !c.Gallery[i].IsZero() {
			fn(enums.MediaCategoryGallery, &c.Gallery[i])
		}
	}
	for i := range c.Timeline {
		if c.Timeline[i].Media != nil && !c.Timeline[i].Media.IsZero() {
			fn(enums.MediaCategoryTimeline, c.Timeline[i].Media)
		}
	}
	if c.VoiceNote != nil && !c.VoiceNote.IsZero() {
		fn(enums.MediaCategoryVoice, c.VoiceNote)
	}
}
