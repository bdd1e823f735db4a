package classify

// Rules holds the declarative names the classifier matches against.
type Rules struct {
	// ModelMarker is the directory name that contains model definitions.
	ModelMarker string `yaml:"model_marker"`
	// ReservedModelNames never produce a model page, even directly below a marker.
	ReservedModelNames []string `yaml:"reserved_model_names"`
	// InitMarker is the file that turns a directory into a code package.
	InitMarker string `yaml:"init_marker"`
	// CodeExtension selects the files that get a module API page.
	CodeExtension string `yaml:"code_extension"`
	// ExcludedSegments disqualify a directory from being a code package when
	// any segment of its path (relative to the source root) matches.
	ExcludedSegments []string `yaml:"excluded_segments"`
	// PrunedNames are directory basenames that are never descended into.
	PrunedNames []string `yaml:"pruned_names"`
}

// DefaultRules returns the rules for the conventional app layout.
func DefaultRules() Rules {
	return Rules{
		ModelMarker:        "doctype",
		ReservedModelNames: []string{"doctype", "boilerplate"},
		InitMarker:         "__init__.py",
		CodeExtension:      ".py",
		ExcludedSegments:   []string{"patches", "tests", "report", "page", "templates", "change_log"},
		PrunedNames:        []string{"__pycache__", "node_modules"},
	}
}

// WithDefaults fills any empty field from DefaultRules.
func (r Rules) WithDefaults() Rules {
	d := DefaultRules()
	if r.ModelMarker == "" {
		r.ModelMarker = d.ModelMarker
	}
	if len(r.ReservedModelNames) == 0 {
		r.ReservedModelNames = d.ReservedModelNames
	}
	if r.InitMarker == "" {
		r.InitMarker = d.InitMarker
	}
	if r.CodeExtension == "" {
		r.CodeExtension = d.CodeExtension
	}
	if len(r.ExcludedSegments) == 0 {
		r.ExcludedSegments = d.ExcludedSegments
	}
	if len(r.PrunedNames) == 0 {
		r.PrunedNames = d.PrunedNames
	}
	return r
}
