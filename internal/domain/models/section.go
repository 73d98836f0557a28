// internal/domain/models/section.go
package models

// Section types. A portfolio document is an ordered list of sections, each
// discriminated by Type. The set is closed: sectiondoc.Canonicalize rejects
// documents carrying any other value, and the renderer refuses to dispatch on
// an unhandled variant rather than silently rendering nothing.
const (
	SectionHero         = "hero"
	SectionAbout        = "about"
	SectionSkills       = "skills"
	SectionExperience   = "experience"
	SectionProjects     = "projects"
	SectionTestimonials = "testimonials"
	SectionContact      = "contact"
)

// SectionTypes lists all variants in canonical order.
var SectionTypes = []string{
	SectionHero,
	SectionAbout,
	SectionSkills,
	SectionExperience,
	SectionProjects,
	SectionTestimonials,
	SectionContact,
}

// ValidSectionType reports whether t names a known section variant.
func ValidSectionType(t string) bool {
	for _, s := range SectionTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Background types.
const (
	BackgroundColor    = "color"
	BackgroundGradient = "gradient"
	BackgroundImage    = "image"
)

// Gradient kinds and directions.
const (
	GradientLinear = "linear"
	GradientRadial = "radial"

	DirectionHorizontal = "horizontal"
	DirectionVertical   = "vertical"
	DirectionDiagonal   = "diagonal"
)

// Entrance animation types.
const (
	AnimationNone       = "none"
	AnimationFade       = "fade"
	AnimationSlideUp    = "slideUp"
	AnimationSlideDown  = "slideDown"
	AnimationSlideLeft  = "slideLeft"
	AnimationSlideRight = "slideRight"
)

// About-section image shapes.
const (
	ShapeCircle   = "circle"
	ShapeSquare   = "square"
	ShapeRounded  = "rounded"
	ShapeHexagon  = "hexagon"
	ShapeTriangle = "triangle"
)

// Contact methods.
const (
	ContactEmail    = "email"
	ContactWhatsApp = "whatsapp"
)

// Background describes a section's background fill.
type Background struct {
	Type string `bson:"type,omitempty" json:"type,omitempty"` // color | gradient | image

	// color
	Color string `bson:"color,omitempty" json:"color,omitempty"`

	// gradient
	GradientKind string `bson:"gradient_kind,omitempty" json:"gradient_kind,omitempty"` // linear | radial
	Direction    string `bson:"direction,omitempty" json:"direction,omitempty"`         // horizontal | vertical | diagonal
	FromColor    string `bson:"from_color,omitempty" json:"from_color,omitempty"`
	ToColor      string `bson:"to_color,omitempty" json:"to_color,omitempty"`

	// image
	ImageURL string `bson:"image_url,omitempty" json:"image_url,omitempty"`
}

// Card is a child record of the card-bearing section variants (skills,
// experience, testimonials). Cards have no lifecycle of their own: the whole
// document is replaced on save, never patched per card.
type Card struct {
	ID       string   `bson:"id" json:"id"` // generated, unique within the document
	Title    string   `bson:"title,omitempty" json:"title,omitempty"`
	Subtitle string   `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Body     string   `bson:"body,omitempty" json:"body,omitempty"`
	ImageURL string   `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Tags     []string `bson:"tags,omitempty" json:"tags,omitempty"`
}

// ProjectItem is a child record of the projects variant.
type ProjectItem struct {
	ID          string   `bson:"id" json:"id"`
	Title       string   `bson:"title,omitempty" json:"title,omitempty"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL    string   `bson:"image_url,omitempty" json:"image_url,omitempty"`
	LogoURL     string   `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	LinkURL     string   `bson:"link_url,omitempty" json:"link_url,omitempty"` // external "learn more"
	Tags        []string `bson:"tags,omitempty" json:"tags,omitempty"`
}

// Section is one content block of a portfolio document, a tagged union
// discriminated by Type. Only the fields belonging to the variant are
// populated; the rest stay at their zero values and are omitted on the wire.
type Section struct {
	Type     string `bson:"type" json:"type"`
	Title    string `bson:"title,omitempty" json:"title,omitempty"`
	Subtitle string `bson:"subtitle,omitempty" json:"subtitle,omitempty"`

	Background Background `bson:"background,omitempty" json:"background,omitempty"`
	Animation  string     `bson:"animation,omitempty" json:"animation,omitempty"`
	TextColor  string     `bson:"text_color,omitempty" json:"text_color,omitempty"`

	// about
	AboutText   string `bson:"about_text,omitempty" json:"about_text,omitempty"`
	ImageURL    string `bson:"image_url,omitempty" json:"image_url,omitempty"`
	ImageShape  string `bson:"image_shape,omitempty" json:"image_shape,omitempty"` // circle | square | rounded | hexagon | triangle
	ImageBorder bool   `bson:"image_border,omitempty" json:"image_border,omitempty"`
	BorderColor string `bson:"border_color,omitempty" json:"border_color,omitempty"`

	// skills | experience | testimonials
	Cards []Card `bson:"cards,omitempty" json:"cards,omitempty"`

	// projects
	Items []ProjectItem `bson:"items,omitempty" json:"items,omitempty"`

	// contact
	ContactMethod string `bson:"contact_method,omitempty" json:"contact_method,omitempty"` // email | whatsapp
	ContactValue  string `bson:"contact_value,omitempty" json:"contact_value,omitempty"`
	ContactLabel  string `bson:"contact_label,omitempty" json:"contact_label,omitempty"`
}

// AnchorID returns the DOM anchor for this section, used by the navbar and
// the smooth-scroll script.
func (s Section) AnchorID() string {
	return "section-" + s.Type
}
