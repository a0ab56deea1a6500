package taxonomy

import "regexp"

// PatternSet holds every recognizable signal for a single label. The five
// evidence sources each read one slice; a label with an empty slice simply
// produces no hints from that source.
type PatternSet struct {
	Label Label

	// Packages are dependency names matched against the project manifest.
	// A trailing '*' matches any dependency with that prefix
	// (e.g. "@angular/*").
	Packages []string

	// ConfigFiles are canonical configuration filenames whose presence at
	// the project root is a near-certain signal. Doublestar globs.
	ConfigFiles []string

	// StructureGlobs are directory/file conventions matched against the
	// project tree. Weakest signal: structure can be coincidental.
	StructureGlobs []string

	// ImportPatterns match import statements in the leading lines of
	// sampled source files.
	ImportPatterns []*regexp.Regexp

	// UsagePatterns match actual component/tag usage and prop idioms in
	// sampled component files, not just imports.
	UsagePatterns []*regexp.Regexp
}

// Catalog is the full pattern table for one taxonomy. Built once at startup
// and treated as immutable; scanners and classifiers receive it explicitly
// rather than reading package globals.
type Catalog struct {
	Taxonomy Taxonomy
	Sets     []PatternSet

	// ExclusiveKits lists labels that represent full UI kits which do not
	// coexist in practice. The manifest scanner records a pre-signal when
	// two of them are declared together.
	ExclusiveKits []Label
}

// Set returns the pattern set for a label, if registered.
func (c *Catalog) Set(label Label) (PatternSet, bool) {
	for _, s := range c.Sets {
		if s.Label == label {
			return s, true
		}
	}
	return PatternSet{}, false
}

// DefaultFrameworkCatalog returns the built-in framework pattern table.
func DefaultFrameworkCatalog() *Catalog {
	return &Catalog{
		Taxonomy: TaxonomyFramework,
		Sets: []PatternSet{
			{
				Label:    React,
				Packages: []string{"react", "react-dom"},
				StructureGlobs: []string{
					"src/components",
					"src/App.jsx",
					"src/App.tsx",
				},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]react['"]`),
					regexp.MustCompile(`require\(['"]react['"]\)`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`\buse(State|Effect|Memo|Callback|Ref)\(`),
					regexp.MustCompile(`React\.createElement\(`),
					regexp.MustCompile(`\bcreateRoot\(`),
				},
			},
			{
				Label:    Next,
				Packages: []string{"next"},
				ConfigFiles: []string{
					"next.config.js",
					"next.config.mjs",
					"next.config.ts",
				},
				StructureGlobs: []string{
					"pages",
					"app/layout.tsx",
					"app/layout.jsx",
					"next-env.d.ts",
				},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]next/`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`\bget(ServerSideProps|StaticProps|StaticPaths)\b`),
					regexp.MustCompile(`['"]use client['"]`),
				},
			},
			{
				Label:    Vue,
				Packages: []string{"vue"},
				ConfigFiles: []string{
					"vue.config.js",
				},
				StructureGlobs: []string{
					"src/App.vue",
					"src/components/**/*.vue",
				},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]vue['"]`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`<template>`),
					regexp.MustCompile(`\bdefineComponent\(`),
					regexp.MustCompile(`\bdefineProps\b`),
				},
			},
			{
				Label:    Nuxt,
				Packages: []string{"nuxt"},
				ConfigFiles: []string{
					"nuxt.config.js",
					"nuxt.config.ts",
				},
				StructureGlobs: []string{
					"layouts",
					"composables",
					"pages/**/*.vue",
				},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]#app['"]`),
					regexp.MustCompile(`from\s+['"]nuxt/`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`\buseNuxtApp\(`),
					regexp.MustCompile(`\bdefineNuxtConfig\(`),
				},
			},
			{
				Label:    Svelte,
				Packages: []string{"svelte"},
				ConfigFiles: []string{
					"svelte.config.js",
				},
				StructureGlobs: []string{
					"src/routes",
					"src/**/*.svelte",
				},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]svelte`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`\{#(if|each|await)\s`),
					regexp.MustCompile(`\bonMount\(`),
				},
			},
			{
				Label:    Angular,
				Packages: []string{"@angular/*"},
				ConfigFiles: []string{
					"angular.json",
				},
				StructureGlobs: []string{
					"src/app/**/*.component.ts",
					"src/main.ts",
				},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]@angular/`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`@Component\(`),
					regexp.MustCompile(`@NgModule\(`),
				},
			},
		},
	}
}

// DefaultStylingCatalog returns the built-in styling-system pattern table.
func DefaultStylingCatalog() *Catalog {
	return &Catalog{
		Taxonomy:      TaxonomyStyling,
		ExclusiveKits: []Label{MUI, Chakra, AntDesign},
		Sets: []PatternSet{
			{
				Label:    Tailwind,
				Packages: []string{"tailwindcss", "@tailwindcss/forms", "@tailwindcss/typography"},
				ConfigFiles: []string{
					"tailwind.config.js",
					"tailwind.config.cjs",
					"tailwind.config.mjs",
					"tailwind.config.ts",
				},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`@tailwind\s+(base|components|utilities)`),
					regexp.MustCompile(`from\s+['"]tailwindcss`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`class(Name)?=["'][^"']*\b(flex|grid|px-\d|py-\d|mt-\d|text-(sm|lg|xl)|bg-[a-z]+-\d{2,3}|rounded)\b`),
				},
			},
			{
				Label:    StyledComponents,
				Packages: []string{"styled-components"},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]styled-components['"]`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile("\\bstyled\\.[a-z][a-zA-Z0-9]*`"),
					regexp.MustCompile(`\bstyled\([A-Z][A-Za-z0-9]*\)`),
					regexp.MustCompile("\\bcreateGlobalStyle`"),
				},
			},
			{
				Label:    Emotion,
				Packages: []string{"@emotion/react", "@emotion/styled", "@emotion/css"},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]@emotion/`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`css=\{`),
					regexp.MustCompile("\\bcss`"),
				},
			},
			{
				Label: CSSModules,
				StructureGlobs: []string{
					"src/**/*.module.css",
					"src/**/*.module.scss",
					"**/*.module.css",
				},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`import\s+\w+\s+from\s+['"][^'"]+\.module\.(css|scss|sass)['"]`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`className=\{styles\.\w+`),
					regexp.MustCompile(`\bstyles\[['"]`),
				},
			},
			{
				Label:    MUI,
				Packages: []string{"@mui/material", "@mui/icons-material", "@mui/system", "@material-ui/core"},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]@mui/`),
					regexp.MustCompile(`from\s+['"]@material-ui/`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`sx=\{\{`),
					regexp.MustCompile(`\bcreateTheme\(`),
					regexp.MustCompile(`<ThemeProvider\b`),
				},
			},
			{
				Label:    Chakra,
				Packages: []string{"@chakra-ui/react", "@chakra-ui/icons"},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]@chakra-ui/`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`<ChakraProvider\b`),
					regexp.MustCompile(`\bextendTheme\(`),
					regexp.MustCompile(`colorScheme=["']`),
				},
			},
			{
				Label:    AntDesign,
				Packages: []string{"antd", "@ant-design/icons"},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]antd['"]`),
					regexp.MustCompile(`from\s+['"]@ant-design/`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`\bForm\.useForm\(`),
					regexp.MustCompile(`<ConfigProvider\b`),
				},
			},
			{
				Label:    Bootstrap,
				Packages: []string{"bootstrap", "react-bootstrap"},
				ImportPatterns: []*regexp.Regexp{
					regexp.MustCompile(`from\s+['"]react-bootstrap`),
					regexp.MustCompile(`['"]bootstrap/dist/css`),
				},
				UsagePatterns: []*regexp.Regexp{
					regexp.MustCompile(`class(Name)?=["'][^"']*\b(container|row|col-(sm|md|lg)-\d|btn btn-)`),
				},
			},
		},
	}
}
