package constants

// CLIName is the command name used in user-facing output
const CLIName = "yamlassist"

// Settings sources, looked up in the working directory
const (
	SettingsFileName = ".yamlassist.yml"
	EnvFileName      = ".env"
	EnvPrefix        = "YAMLASSIST_"
)

// MIME types of the documents the CLI writes
const (
	MIMETypeYAML = "text/yaml"
	MIMETypeJSON = "application/json"
)

// OutputFormat names a serialization target
type OutputFormat string

const (
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
)

// YAMLExtensions are the file extensions treated as YAML documents
var YAMLExtensions = []string{".yml", ".yaml"}

// Extension returns the file extension written for format
func (f OutputFormat) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".yaml"
}

// MIMEType returns the MIME type of format
func (f OutputFormat) MIMEType() string {
	if f == FormatJSON {
		return MIMETypeJSON
	}
	return MIMETypeYAML
}
