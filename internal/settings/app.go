package settings

// Keys of the application settings.
const (
	KeyMaxSubstitutions = "fuzzy_search.max_substitutions"
	KeyMaxInsertions    = "fuzzy_search.max_insertions"
	KeyMaxDeletions     = "fuzzy_search.max_deletions"
	KeyMaxLDist         = "fuzzy_search.max_l_dist"
	KeyCaseSensitive    = "fuzzy_search.case_sensitive"
	KeySearchMode       = "search.mode"
	KeyPreviewLength    = "ui.preview_length"
	KeyConfirmClear     = "ui.confirm_clear"
)

// Search modes accepted by KeySearchMode.
const (
	ModeFuzzy       = "fuzzy"
	ModeSubstring   = "substring"
	ModeSubsequence = "subsequence"
)

// AppRegistry returns the descriptors of every clipflow setting.
func AppRegistry() *Registry {
	reg, err := NewRegistry(
		Descriptor{
			Key:         KeyMaxSubstitutions,
			DisplayName: "Maximum Substitutions",
			Description: "Maximum character substitutions in fuzzy search; unset means bounded only by the maximum distance.",
			Kind:        KindInteger,
			Optional:    true,
			HasBounds:   true,
			Min:         0,
			Max:         10,
		},
		Descriptor{
			Key:         KeyMaxInsertions,
			DisplayName: "Maximum Insertions",
			Description: "Maximum extra characters in the content within a fuzzy match; unset means bounded only by the maximum distance.",
			Kind:        KindInteger,
			Optional:    true,
			HasBounds:   true,
			Min:         0,
			Max:         10,
		},
		Descriptor{
			Key:         KeyMaxDeletions,
			DisplayName: "Maximum Deletions",
			Description: "Maximum query characters missing from the content within a fuzzy match; unset means bounded only by the maximum distance.",
			Kind:        KindInteger,
			Optional:    true,
			HasBounds:   true,
			Min:         0,
			Max:         10,
		},
		Descriptor{
			Key:         KeyMaxLDist,
			DisplayName: "Maximum Levenshtein Distance",
			Description: "Maximum edit distance allowed in fuzzy search. Lower values mean stricter matching.",
			Kind:        KindInteger,
			Default:     1,
			HasBounds:   true,
			Min:         0,
			Max:         10,
		},
		Descriptor{
			Key:         KeyCaseSensitive,
			DisplayName: "Case Sensitive",
			Description: "Whether search distinguishes upper and lower case.",
			Kind:        KindBoolean,
			Default:     false,
		},
		Descriptor{
			Key:         KeySearchMode,
			DisplayName: "Search Mode",
			Description: "fuzzy: edit-distance match; substring: plain containment; subsequence: characters in order.",
			Kind:        KindEnum,
			Default:     ModeFuzzy,
			Options:     []string{ModeFuzzy, ModeSubstring, ModeSubsequence},
		},
		Descriptor{
			Key:         KeyPreviewLength,
			DisplayName: "Preview Length",
			Description: "Characters shown per history row.",
			Kind:        KindSlider,
			Default:     80,
			HasBounds:   true,
			Min:         20,
			Max:         200,
			Step:        10,
		},
		Descriptor{
			Key:         KeyConfirmClear,
			DisplayName: "Confirm Clear",
			Description: "Ask before clearing the whole history.",
			Kind:        KindBoolean,
			Default:     true,
		},
	)
	if err != nil {
		panic(err)
	}
	return reg
}

// Defaults returns settings holding the default of every app setting.
func Defaults() *Settings {
	return New(AppRegistry())
}
