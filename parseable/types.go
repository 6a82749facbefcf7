package parseable

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ServerConfig identifies a target server and the credentials used for
// every request. The caller owns it; the client copies what it needs.
type ServerConfig struct {
	URL           string `validate:"required,url"`
	Username      string `validate:"required"`
	Password      string `validate:"required"`
	SkipTLSVerify bool
	Timeout       time.Duration
}

var configValidator = validator.New()

// Validate checks that the config is complete enough to issue requests.
func (c ServerConfig) Validate() error {
	return configValidator.Struct(c)
}

// StreamDescriptor is one entry of the server's stream listing.
type StreamDescriptor struct {
	Name string `json:"name"`
}

// SchemaField is a single column of a stream schema.
type SchemaField struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// Schema describes the columns of a stream.
type Schema struct {
	Fields []SchemaField `json:"fields"`
}

// StreamStats carries ingestion and storage figures for one stream.
type StreamStats struct {
	Stream    string `json:"stream"`
	Time      string `json:"time"`
	Ingestion struct {
		Count  int64  `json:"count"`
		Size   string `json:"size"`
		Format string `json:"format"`
	} `json:"ingestion"`
	Storage struct {
		Size   string `json:"size"`
		Format string `json:"format"`
	} `json:"storage"`
}

// AboutInfo is the server's self-description.
type AboutInfo struct {
	Version      string `json:"version"`
	Commit       string `json:"commit"`
	DeploymentID string `json:"deploymentId"`
	Mode         string `json:"mode"`
	Staging      string `json:"staging"`
	Store        string `json:"store"`
	UpdateAvail  bool   `json:"updateAvailable"`
	LatestVer    string `json:"latestVersion"`
	License      string `json:"license"`
}

// StreamInfo is the per-stream metadata record.
type StreamInfo struct {
	CreatedAt       string `json:"created-at"`
	FirstEventAt    string `json:"first-event-at"`
	TimePartition   string `json:"time_partition"`
	StaticSchema    bool   `json:"static_schema_flag"`
	CustomPartition string `json:"custom_partition"`
}

// RetentionRule is one entry of a stream's retention configuration.
type RetentionRule struct {
	Description string `json:"description"`
	Action      string `json:"action"`
	Duration    string `json:"duration"`
}

// Alert is a configured server-side alert.
type Alert struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Stream   string `json:"stream"`
	Severity string `json:"severity"`
	State    string `json:"state"`
}

// User is a server account with its assigned roles.
type User struct {
	ID     string   `json:"id"`
	Method string   `json:"method"`
	Roles  []string `json:"roles"`
}

// LogRecord is one row of a query result. Shapes vary per stream, so
// rows stay generic JSON objects.
type LogRecord map[string]any
