package knowledge

import "uigen/internal/taxonomy"

// StackProfile captures what generated code in one styling system may use
// and what it must avoid. The prompt builder turns profiles into hard rules
// for the writer, and the repair stage quotes them back when output drifts.
type StackProfile struct {
	Styling taxonomy.Label `json:"styling"`

	// Packages are the only styling-related packages generated code may
	// import.
	Packages []string `json:"packages,omitempty"`

	// Imports are canonical import lines to copy verbatim when needed.
	Imports []string `json:"imports,omitempty"`

	// Snippet is a short idiomatic example in this styling system.
	Snippet string `json:"snippet,omitempty"`

	// Forbidden lists practices that leak other styling systems in.
	Forbidden []string `json:"forbidden,omitempty"`
}

var profiles = map[taxonomy.Label]StackProfile{
	taxonomy.Tailwind: {
		Styling: taxonomy.Tailwind,
		Snippet: `<button className="rounded bg-blue-600 px-4 py-2 text-sm text-white hover:bg-blue-700">Save</button>`,
		Forbidden: []string{
			"inline style objects or style attributes",
			"styled-components or Emotion imports",
			"hand-written CSS files for things utilities already cover",
		},
	},
	taxonomy.StyledComponents: {
		Styling:  taxonomy.StyledComponents,
		Packages: []string{"styled-components"},
		Imports:  []string{"import styled from 'styled-components'"},
		Snippet: `const SaveButton = styled.button` + "`" + `
  border-radius: 4px;
  background: #2563eb;
  color: white;
  padding: 8px 16px;
` + "`" + `;`,
		Forbidden: []string{
			"utility-class strings in className",
			"separate CSS or CSS-module files",
			"inline style objects",
		},
	},
	taxonomy.Emotion: {
		Styling:  taxonomy.Emotion,
		Packages: []string{"@emotion/react", "@emotion/styled"},
		Imports:  []string{"/** @jsxImportSource @emotion/react */", "import { css } from '@emotion/react'"},
		Snippet: `const buttonStyle = css({ borderRadius: 4, background: '#2563eb', color: 'white' })
<button css={buttonStyle}>Save</button>`,
		Forbidden: []string{
			"utility-class strings in className",
			"styled-components imports",
		},
	},
	taxonomy.CSSModules: {
		Styling: taxonomy.CSSModules,
		Imports: []string{"import styles from './Component.module.css'"},
		Snippet: `<button className={styles.saveButton}>Save</button>`,
		Forbidden: []string{
			"global stylesheets or selectors",
			"utility-class strings",
			"inline style objects",
		},
	},
	taxonomy.MUI: {
		Styling:  taxonomy.MUI,
		Packages: []string{"@mui/material", "@mui/icons-material"},
		Imports:  []string{"import { Button } from '@mui/material'"},
		Snippet:  `<Button variant="contained" sx={{ borderRadius: 1 }}>Save</Button>`,
		Forbidden: []string{
			"raw HTML controls where an @mui/material component exists",
			"utility-class strings in className",
			"other component kits (chakra, antd)",
		},
	},
	taxonomy.Chakra: {
		Styling:  taxonomy.Chakra,
		Packages: []string{"@chakra-ui/react"},
		Imports:  []string{"import { Button } from '@chakra-ui/react'"},
		Snippet:  `<Button colorScheme="blue" borderRadius="md">Save</Button>`,
		Forbidden: []string{
			"raw HTML controls where a @chakra-ui/react component exists",
			"the sx prop (that is MUI), use style props",
			"other component kits (mui, antd)",
		},
	},
	taxonomy.AntDesign: {
		Styling:  taxonomy.AntDesign,
		Packages: []string{"antd", "@ant-design/icons"},
		Imports:  []string{"import { Button } from 'antd'"},
		Snippet:  `<Button type="primary">Save</Button>`,
		Forbidden: []string{
			"raw HTML controls where an antd component exists",
			"other component kits (mui, chakra)",
		},
	},
	taxonomy.Bootstrap: {
		Styling: taxonomy.Bootstrap,
		Snippet: `<button className="btn btn-primary">Save</button>`,
		Forbidden: []string{
			"Tailwind-style utility fragments (px-4, text-sm)",
			"CSS-in-JS of any kind",
		},
	},
	taxonomy.PlainCSS: {
		Styling: taxonomy.PlainCSS,
		Snippet: `<button class="save-button">Save</button>
/* stylesheet */ .save-button { border-radius: 4px; background: #2563eb; color: white; }`,
		Forbidden: []string{
			"CSS-in-JS of any kind",
			"framework-specific utility classes",
		},
	},
}

// ProfileFor returns the stack profile for a styling label, falling back to
// plain CSS for anything unregistered.
func ProfileFor(styling taxonomy.Label) StackProfile {
	if p, ok := profiles[styling]; ok {
		return p
	}
	return profiles[taxonomy.PlainCSS]
}
