// Package strategy maps a detection decision to a concrete generation
// strategy: what kind of source file to produce and how styles are applied
// in it. Lookup walks a three-step chain so every label combination lands
// somewhere sensible: exact pair, then framework default, then the global
// fallback.
package strategy

import (
	"fmt"

	"uigen/internal/taxonomy"
)

// Strategy describes how generated components should be written for one
// framework/styling combination.
type Strategy struct {
	Framework taxonomy.Label `json:"framework"`
	Styling   taxonomy.Label `json:"styling"`

	// FileExt is the extension for generated component files.
	FileExt string `json:"file_ext"`

	// SyntaxHint tells the writer what component shape to produce.
	SyntaxHint string `json:"syntax_hint"`

	// StyleHint tells the writer how styles are attached in this stack.
	StyleHint string `json:"style_hint"`
}

func pairKey(fw, st taxonomy.Label) string { return string(fw) + "|" + string(st) }

// Selector resolves strategies with a fixed lookup chain.
type Selector struct {
	exact       map[string]Strategy
	byFramework map[taxonomy.Label]Strategy
	fallback    Strategy
}

// NewSelector builds the default strategy table and verifies at startup
// that every framework/styling combination resolves to a usable strategy.
func NewSelector() (*Selector, error) {
	s := &Selector{
		exact:       defaultExact(),
		byFramework: defaultByFramework(),
		fallback: Strategy{
			Framework:  taxonomy.Vanilla,
			Styling:    taxonomy.PlainCSS,
			FileExt:    ".html",
			SyntaxHint: "a self-contained HTML fragment with a companion stylesheet",
			StyleHint:  "plain CSS classes in a <style> block or companion stylesheet",
		},
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Select resolves the strategy for a label pair. It never fails: the chain
// bottoms out at the global fallback.
func (s *Selector) Select(fw, st taxonomy.Label) Strategy {
	if hit, ok := s.exact[pairKey(fw, st)]; ok {
		return hit
	}
	if hit, ok := s.byFramework[fw]; ok {
		hit.Styling = st
		hit.StyleHint = genericStyleHint(st)
		return hit
	}
	out := s.fallback
	out.Styling = st
	out.StyleHint = genericStyleHint(st)
	return out
}

func (s *Selector) validate() error {
	if s.fallback.FileExt == "" || s.fallback.SyntaxHint == "" {
		return fmt.Errorf("strategy fallback is incomplete")
	}
	for key, st := range s.exact {
		if st.FileExt == "" || st.SyntaxHint == "" || st.StyleHint == "" {
			return fmt.Errorf("exact strategy %s is incomplete", key)
		}
	}
	for _, fw := range taxonomy.Frameworks() {
		for _, st := range taxonomy.StylingSystems() {
			got := s.Select(fw, st)
			if got.FileExt == "" || got.SyntaxHint == "" || got.StyleHint == "" {
				return fmt.Errorf("no usable strategy for %s/%s", fw, st)
			}
		}
	}
	return nil
}

func defaultByFramework() map[taxonomy.Label]Strategy {
	return map[taxonomy.Label]Strategy{
		taxonomy.React: {
			Framework:  taxonomy.React,
			FileExt:    ".tsx",
			SyntaxHint: "a React function component in TypeScript with a typed props interface",
		},
		taxonomy.Next: {
			Framework:  taxonomy.Next,
			FileExt:    ".tsx",
			SyntaxHint: "a React function component in TypeScript suitable for the Next.js app router; mark it 'use client' only if it needs state or effects",
		},
		taxonomy.Vue: {
			Framework:  taxonomy.Vue,
			FileExt:    ".vue",
			SyntaxHint: "a Vue single-file component using <script setup lang=\"ts\">",
		},
		taxonomy.Nuxt: {
			Framework:  taxonomy.Nuxt,
			FileExt:    ".vue",
			SyntaxHint: "a Vue single-file component using <script setup lang=\"ts\"> following Nuxt conventions",
		},
		taxonomy.Svelte: {
			Framework:  taxonomy.Svelte,
			FileExt:    ".svelte",
			SyntaxHint: "a Svelte component with a typed <script lang=\"ts\"> block",
		},
		taxonomy.Angular: {
			Framework:  taxonomy.Angular,
			FileExt:    ".ts",
			SyntaxHint: "a standalone Angular component with an inline template",
		},
		taxonomy.Vanilla: {
			Framework:  taxonomy.Vanilla,
			FileExt:    ".html",
			SyntaxHint: "a self-contained HTML fragment with minimal vanilla JS",
		},
	}
}

func defaultExact() map[string]Strategy {
	entries := []Strategy{
		{
			Framework: taxonomy.React, Styling: taxonomy.Tailwind, FileExt: ".tsx",
			SyntaxHint: "a React function component in TypeScript with a typed props interface",
			StyleHint:  "Tailwind utility classes composed in the className attribute; no inline style objects",
		},
		{
			Framework: taxonomy.React, Styling: taxonomy.StyledComponents, FileExt: ".tsx",
			SyntaxHint: "a React function component in TypeScript with a typed props interface",
			StyleHint:  "styled-components template literals declared above the component; no className strings",
		},
		{
			Framework: taxonomy.React, Styling: taxonomy.Emotion, FileExt: ".tsx",
			SyntaxHint: "a React function component in TypeScript with a typed props interface",
			StyleHint:  "Emotion's css prop with object styles",
		},
		{
			Framework: taxonomy.React, Styling: taxonomy.CSSModules, FileExt: ".tsx",
			SyntaxHint: "a React function component in TypeScript with a typed props interface",
			StyleHint:  "classes from an imported *.module.css object; include the module file",
		},
		{
			Framework: taxonomy.React, Styling: taxonomy.MUI, FileExt: ".tsx",
			SyntaxHint: "a React function component in TypeScript with a typed props interface",
			StyleHint:  "@mui/material components styled through the sx prop",
		},
		{
			Framework: taxonomy.React, Styling: taxonomy.Chakra, FileExt: ".tsx",
			SyntaxHint: "a React function component in TypeScript with a typed props interface",
			StyleHint:  "@chakra-ui/react components styled through style props",
		},
		{
			Framework: taxonomy.React, Styling: taxonomy.AntDesign, FileExt: ".tsx",
			SyntaxHint: "a React function component in TypeScript with a typed props interface",
			StyleHint:  "antd components configured via their props; custom tweaks in a companion stylesheet",
		},
		{
			Framework: taxonomy.Next, Styling: taxonomy.Tailwind, FileExt: ".tsx",
			SyntaxHint: "a React function component in TypeScript suitable for the Next.js app router; mark it 'use client' only if it needs state or effects",
			StyleHint:  "Tailwind utility classes composed in the className attribute; no inline style objects",
		},
		{
			Framework: taxonomy.Vue, Styling: taxonomy.Tailwind, FileExt: ".vue",
			SyntaxHint: "a Vue single-file component using <script setup lang=\"ts\">",
			StyleHint:  "Tailwind utility classes in template class attributes; no <style> block",
		},
		{
			Framework: taxonomy.Svelte, Styling: taxonomy.Tailwind, FileExt: ".svelte",
			SyntaxHint: "a Svelte component with a typed <script lang=\"ts\"> block",
			StyleHint:  "Tailwind utility classes in element class attributes; no <style> block",
		},
	}
	out := make(map[string]Strategy, len(entries))
	for _, e := range entries {
		out[pairKey(e.Framework, e.Styling)] = e
	}
	return out
}

func genericStyleHint(st taxonomy.Label) string {
	switch st {
	case taxonomy.Tailwind:
		return "Tailwind utility classes in class attributes"
	case taxonomy.StyledComponents:
		return "styled-components template literals"
	case taxonomy.Emotion:
		return "Emotion css prop or @emotion/styled components"
	case taxonomy.CSSModules:
		return "classes from an imported *.module.css object"
	case taxonomy.MUI:
		return "@mui/material components with the sx prop"
	case taxonomy.Chakra:
		return "@chakra-ui/react components with style props"
	case taxonomy.AntDesign:
		return "antd components configured via their props"
	case taxonomy.Bootstrap:
		return "Bootstrap grid and utility classes"
	default:
		return "plain CSS classes in a companion stylesheet"
	}
}
