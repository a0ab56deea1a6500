package taxonomy

// stylingGuidance maps each styling label to the practical advice a decision
// report carries forward into generation.
var stylingGuidance = map[Label][]string{
	Tailwind: {
		"compose styles from Tailwind utility classes in className attributes",
		"extend the design palette in tailwind.config rather than writing raw CSS",
	},
	StyledComponents: {
		"define styled.* template components next to the components that use them",
		"thread theme values through the styled-components ThemeProvider",
	},
	Emotion: {
		"style with the css prop or @emotion/styled components",
		"keep the @emotion/react jsx pragma consistent across files",
	},
	CSSModules: {
		"keep one *.module.css file per component and reference classes via the imported styles object",
		"avoid global selectors inside module files",
	},
	MUI: {
		"build from @mui/material components and style via the sx prop",
		"centralize design tokens in a createTheme call",
	},
	Chakra: {
		"build from @chakra-ui/react components and style via style props",
		"extend tokens with extendTheme instead of ad-hoc CSS",
	},
	AntDesign: {
		"build from antd components and configure theme tokens via ConfigProvider",
		"prefer the Form.useForm API over hand-rolled form state",
	},
	Bootstrap: {
		"lay out with the Bootstrap grid and spacing utilities",
		"reach for documented component classes before writing custom CSS",
	},
	PlainCSS: {
		"keep styles in plain stylesheets with stable class names",
		"scope selectors by component-level class prefixes to avoid collisions",
	},
}

// Guidance returns the recommendation lines for a styling label. Unknown
// labels fall back to the plain-css advice so the result is never empty.
func Guidance(styling Label) []string {
	if g, ok := stylingGuidance[styling]; ok {
		out := make([]string, len(g))
		copy(out, g)
		return out
	}
	out := make([]string, len(stylingGuidance[PlainCSS]))
	copy(out, stylingGuidance[PlainCSS])
	return out
}
