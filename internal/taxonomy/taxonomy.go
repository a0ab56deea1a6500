package taxonomy

// Label identifies one member of a closed taxonomy. The detection pipeline
// only ever emits labels declared in this package; free-form strings are
// never introduced at runtime.
type Label string

// Taxonomy names one of the two closed label sets.
type Taxonomy string

const (
	TaxonomyFramework Taxonomy = "framework"
	TaxonomyStyling   Taxonomy = "styling"
)

// Framework labels.
const (
	React   Label = "react"
	Next    Label = "next"
	Vue     Label = "vue"
	Nuxt    Label = "nuxt"
	Svelte  Label = "svelte"
	Angular Label = "angular"

	// Vanilla is the framework fallback when no evidence exists.
	Vanilla Label = "vanilla"
)

// Styling-system labels.
const (
	Tailwind         Label = "tailwind"
	StyledComponents Label = "styled-components"
	Emotion          Label = "emotion"
	CSSModules       Label = "css-modules"
	MUI              Label = "mui"
	Chakra           Label = "chakra"
	AntDesign        Label = "antd"
	Bootstrap        Label = "bootstrap"

	// PlainCSS is the styling fallback when no evidence exists.
	PlainCSS Label = "plain-css"
)

// Frameworks returns every framework label in canonical order,
// excluding the fallback.
func Frameworks() []Label {
	return []Label{React, Next, Vue, Nuxt, Svelte, Angular}
}

// StylingSystems returns every styling label in canonical order,
// excluding the fallback.
func StylingSystems() []Label {
	return []Label{Tailwind, StyledComponents, Emotion, CSSModules, MUI, Chakra, AntDesign, Bootstrap}
}

// Fallback returns the designated no-evidence label for a taxonomy.
func Fallback(t Taxonomy) Label {
	if t == TaxonomyStyling {
		return PlainCSS
	}
	return Vanilla
}

// Known reports whether label is a member of the given taxonomy,
// fallback included.
func Known(t Taxonomy, label Label) bool {
	if label == Fallback(t) {
		return true
	}
	for _, l := range members(t) {
		if l == label {
			return true
		}
	}
	return false
}

func members(t Taxonomy) []Label {
	if t == TaxonomyStyling {
		return StylingSystems()
	}
	return Frameworks()
}

// Display returns the human-readable name for a label.
func (l Label) Display() string {
	switch l {
	case React:
		return "React"
	case Next:
		return "Next.js"
	case Vue:
		return "Vue.js"
	case Nuxt:
		return "Nuxt"
	case Svelte:
		return "Svelte"
	case Angular:
		return "Angular"
	case Vanilla:
		return "Vanilla JS"
	case Tailwind:
		return "Tailwind CSS"
	case StyledComponents:
		return "styled-components"
	case Emotion:
		return "Emotion"
	case CSSModules:
		return "CSS Modules"
	case MUI:
		return "Material UI"
	case Chakra:
		return "Chakra UI"
	case AntDesign:
		return "Ant Design"
	case Bootstrap:
		return "Bootstrap"
	case PlainCSS:
		return "Plain CSS"
	}
	return string(l)
}
