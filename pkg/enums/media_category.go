package enums

// MediaCategory names the slot a media object occupies on a page. It doubles
// as the storage folder under the page's permanent prefix.
type MediaCategory string

const (
	MediaCategoryCover    MediaCategory = "cover"
	MediaCategoryGallery  MediaCategory = "gallery"
	MediaCategoryTimeline MediaCategory = "timeline"
	MediaCategoryVoice    MediaCategory = "voice"
)

func (c MediaCategory) IsValid() bool {
	switch c {
	case MediaCategoryCover, MediaCategoryGallery, MediaCategoryTimeline, MediaCategoryVoice:
		return true
	}
	return false
}

func (c MediaCategory) String() string { return string(c) }
