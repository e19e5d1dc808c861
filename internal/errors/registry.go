package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Configuration (W100-W119)

	"W100": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
		Detail:   "The configuration file exists but could not be read or parsed.",
		DocURL:   "https://whistle.dev/docs/errors/W100",
	},
	"W101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration field holds a value outside its allowed range or format.",
		DocURL:   "https://whistle.dev/docs/errors/W101",
	},
	"W102": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No whistle.json, whistle.jsonc or whistle.yaml was found.",
		DocURL:   "https://whistle.dev/docs/errors/W102",
	},
	"W103": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .jsonc, .yaml or .yml.",
		DocURL:   "https://whistle.dev/docs/errors/W103",
	},

	// Protocol (W200-W219)

	"W200": {
		Category: CategoryProtocol,
		Message:  "Malformed message",
		Detail:   "A message from the server could not be decoded.",
		DocURL:   "https://whistle.dev/docs/errors/W200",
	},
	"W201": {
		Category: CategoryProtocol,
		Message:  "Invalid program parameters",
		Detail:   "Program parameters must be a JSON object.",
		DocURL:   "https://whistle.dev/docs/errors/W201",
	},

	// CLI (W300-W319)

	"W300": {
		Category: CategoryCLI,
		Message:  "Page markup unreadable",
		Detail:   "The page given to the command could not be read or parsed as HTML.",
		DocURL:   "https://whistle.dev/docs/errors/W300",
	},
	"W301": {
		Category: CategoryCLI,
		Message:  "No mount points found",
		Detail:   "The page has no element carrying data-whistle-program.",
		DocURL:   "https://whistle.dev/docs/errors/W301",
	},
	"W302": {
		Category: CategoryCLI,
		Message:  "Unknown command",
		Detail:   "The interactive command is not recognised.",
		DocURL:   "https://whistle.dev/docs/errors/W302",
	},
	"W303": {
		Category: CategoryCLI,
		Message:  "Missing socket URL",
		Detail:   "A mount point has no data-whistle-socket and no default socket URL is configured.",
		DocURL:   "https://whistle.dev/docs/errors/W303",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
