package config

import "gitlab.com/civicworks/tenderengine/internal/tender"

// Validation tags described here: https://pkg.go.dev/github.com/go-playground/validator/v10
type Config struct {
	Engine struct {
		QualityThreshold     int  `env:"ENGINE_QUALITY_THRESHOLD" flag:"quality-threshold" desc:"minimum acceptable milestone quality score" validate:"gte=0,lte=100"`
		MilestoneSlices      int  `env:"ENGINE_MILESTONE_SLICES" flag:"milestone-slices" desc:"number of milestone slices per tender" validate:"gte=1,lte=20"`
		SequentialMilestones bool `env:"ENGINE_SEQUENTIAL_MILESTONES" flag:"sequential-milestones" desc:"require prior milestone slice to be verified or released before submitting the next"`
	}
	Journal struct {
		Capacity int `env:"JOURNAL_CAPACITY" flag:"journal-capacity" desc:"activity journal entries kept per engine" validate:"gte=16"`
	}
	Log struct {
		LogToFile bool   `env:"LOG_TO_FILE" flag:"log-to-file"`
		Color     bool   `env:"LOG_COLOR" flag:"log-color"`
		IsJSON    bool   `env:"LOG_JSON" flag:"log-json"`
		Level     string `env:"LOG_LEVEL" flag:"log-level" validate:"oneof=debug info warn error dpanic panic fatal"`
	}
	Web struct {
		Address   string `env:"WEB_ADDRESS" flag:"web-address" desc:"http server address host:port" validate:"required,hostname_port"`
		PublicUrl string `env:"WEB_PUBLIC_URL" flag:"web-public-url" desc:"public url of the engine, falls back to web-address if empty" validate:"omitempty,url"`
	}
}

// SetDefaults fills the fields that have a meaningful default when the
// environment leaves them unset.
func (cfg *Config) SetDefaults() {
	if cfg.Engine.QualityThreshold == 0 {
		cfg.Engine.QualityThreshold = 60
	}
	if cfg.Engine.MilestoneSlices == 0 {
		cfg.Engine.MilestoneSlices = tender.TaskCount
	}
	if cfg.Journal.Capacity == 0 {
		cfg.Journal.Capacity = 1024
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Web.Address == "" {
		cfg.Web.Address = "0.0.0.0:8080"
	}
}
