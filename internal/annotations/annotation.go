package annotations

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/bookmarksync/internal/models"
)

// Motivation values carried on the wire. Bookmarking covers reading
// positions and explicit bookmarks; highlighting covers text selections.
const (
	MotivationBookmarking  = "http://www.w3.org/ns/oa#bookmarking"
	MotivationHighlighting = "http://www.w3.org/ns/oa#highlighting"
)

var errIncompleteAnnotation = errors.New("annotation is missing id, target or selector")

// Annotation is the wire representation of a bookmark, shaped after the W3C
// Web Annotation model. The exact schema is owned by the server; this type
// carries only the fields the engine reads and writes.
//
// Two identifiers coexist: ID is the server-assigned resource URI (empty
// until the server has stored the annotation), while Body.BookmarkID is the
// stable client-minted identifier that survives the round trip and keys
// reconciliation.
type Annotation struct {
	Context    string           `json:"@context,omitempty"`
	ID         string           `json:"id,omitempty"`
	Motivation string           `json:"motivation"`
	Target     AnnotationTarget `json:"target"`
	Body       AnnotationBody   `json:"body"`
}

type AnnotationTarget struct {
	// Source is the identifier of the annotated work.
	Source   string              `json:"source"`
	Selector *AnnotationSelector `json:"selector,omitempty"`
}

type AnnotationSelector struct {
	Type        string  `json:"type"`
	Href        string  `json:"href"`
	Progression float64 `json:"progressWithinChapter"`
}

type AnnotationBody struct {
	BookmarkID string `json:"http://librarysimplified.org/terms/annotationId,omitempty"`
	Time       string `json:"http://librarysimplified.org/terms/time,omitempty"`
	Device     string `json:"http://librarysimplified.org/terms/device,omitempty"`
	Kind       string `json:"http://librarysimplified.org/terms/kind,omitempty"`
	Selected   string `json:"http://librarysimplified.org/terms/selectedText,omitempty"`
}

// collection is the envelope the annotation endpoint returns on GET.
type collection struct {
	First struct {
		Items []Annotation `json:"items"`
	} `json:"first"`
}

// FromBookmark maps a bookmark onto its wire form.
func FromBookmark(b models.Bookmark) Annotation {
	motivation := MotivationBookmarking
	if b.Kind == models.KindHighlight {
		motivation = MotivationHighlighting
	}
	return Annotation{
		Context:    "http://www.w3.org/ns/anno.jsonld",
		ID:         b.URI,
		Motivation: motivation,
		Target: AnnotationTarget{
			Source: string(b.Work),
			Selector: &AnnotationSelector{
				Type:        "LocatorHrefProgression",
				Href:        b.ChapterHref,
				Progression: b.Progression,
			},
		},
		Body: AnnotationBody{
			BookmarkID: string(b.ID),
			Time:       b.Time.UTC().Format(time.RFC3339),
			Device:     b.Device,
			Kind:       string(b.Kind),
			Selected:   b.SelectedText,
		},
	}
}

// ToBookmark maps a wire annotation back onto a bookmark. Annotations
// written by other clients may lack the stable bookmark ID, in which case
// the resource URI stands in for it.
func (a Annotation) ToBookmark() (models.Bookmark, error) {
	if a.Target.Source == "" || a.Target.Selector == nil {
		return models.Bookmark{}, errIncompleteAnnotation
	}

	id := a.Body.BookmarkID
	if id == "" {
		id = a.ID
	}
	if id == "" {
		return models.Bookmark{}, errIncompleteAnnotation
	}

	kind := models.BookmarkKind(a.Body.Kind)
	switch kind {
	case models.KindLastReadLocation, models.KindExplicit, models.KindHighlight:
	case "":
		if a.Motivation == MotivationHighlighting {
			kind = models.KindHighlight
		} else {
			kind = models.KindExplicit
		}
	default:
		return models.Bookmark{}, errIncompleteAnnotation
	}

	var when time.Time
	if a.Body.Time != "" {
		parsed, err := time.Parse(time.RFC3339, a.Body.Time)
		if err != nil {
			return models.Bookmark{}, err
		}
		when = parsed
	}

	return models.Bookmark{
		ID:           models.BookmarkID(id),
		Work:         models.WorkID(a.Target.Source),
		Kind:         kind,
		ChapterHref:  a.Target.Selector.Href,
		Progression:  a.Target.Selector.Progression,
		SelectedText: a.Body.Selected,
		Time:         when,
		Device:       a.Body.Device,
		URI:          a.ID,
	}, nil
}
