// Package provider defines the translation backends and the fallback chain
// that runs them.
package provider

import "github.com/ZaguanLabs/tercume"

// Provider is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Provider = tercume.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = tercume.TranslateRequest

// Translation is an alias to the main package type.
type Translation = tercume.Translation
