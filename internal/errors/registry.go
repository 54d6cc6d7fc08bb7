package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Configuration (E100-E119)

	"E100": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No canopy.json, canopy.yaml or canopy.yml was found.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Cannot parse configuration",
		Detail:   "The configuration file could not be decoded.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is out of range or inconsistent.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .yaml or .yml.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Cannot write configuration",
		Detail:   "The configuration file could not be written.",
	},

	// Runtime (E120-E139)

	"E120": {
		Category: CategoryRuntime,
		Message:  "Server failed",
		Detail:   "The HTTP server could not start or stopped unexpectedly.",
	},
	"E121": {
		Category: CategoryRuntime,
		Message:  "Application failed to start",
		Detail:   "The application could not be built or its event loop could not start.",
	},

	// Journal (E140-E159)

	"E140": {
		Category: CategoryJournal,
		Message:  "Cannot open journal",
		Detail:   "The journal directory or file could not be created.",
	},
	"E141": {
		Category: CategoryJournal,
		Message:  "Journal upload failed",
		Detail:   "Buffered journal lines could not be uploaded to S3. They are kept for the next rotation.",
	},

	// CLI (E160-E179)

	"E160": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "A command-line flag or argument has an invalid value.",
	},
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// Lookup returns the template for an error code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template Template) {
	registry[code] = template
}
