// Package config resolves every option for a run once at startup.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Search field selectors accepted by --search-field and the config file.
const (
	SearchFieldQuestion = "question"
	SearchFieldAnswer   = "answer"
)

const (
	defaultQuestionField = "Question"
	defaultAnswerField   = "Answer"
	defaultImageField    = "Image"
	defaultOutputDir     = "output"
	defaultImagesDir     = "images"
	defaultSearchDelay   = 1.0 // seconds
	defaultMaxWidth      = 800
	defaultMaxHeight     = 600
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Config holds the options for a single run. It is resolved once by Load
// and treated as read-only afterwards; components receive it explicitly
// instead of consulting process-wide state.
type Config struct {
	// Field-name mappings for the deck being processed.
	QuestionField string
	AnswerField   string
	ImageField    string

	// OutputDir receives the rebuilt deck; ImagesDir is the media store
	// subdirectory under it.
	OutputDir string
	ImagesDir string

	// SearchField selects which field's text drives the image search.
	SearchField string
	// SearchDelay is the pause between consecutive searches.
	SearchDelay time.Duration

	// Downloaded images larger than this box are downscaled in place.
	MaxImageWidth  int
	MaxImageHeight int

	// UserAgent identifies outbound search and download requests.
	UserAgent string
}

// Load builds a Config from built-in defaults overlaid with the optional
// JSON config file. An empty configFile loads defaults only.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("question_field", defaultQuestionField)
	v.SetDefault("answer_field", defaultAnswerField)
	v.SetDefault("image_field", defaultImageField)
	v.SetDefault("output_dir", defaultOutputDir)
	v.SetDefault("images_dir", defaultImagesDir)
	v.SetDefault("search_field", SearchFieldAnswer)
	v.SetDefault("delay_between_searches", defaultSearchDelay)
	v.SetDefault("max_image_width", defaultMaxWidth)
	v.SetDefault("max_image_height", defaultMaxHeight)
	v.SetDefault("user_agent", defaultUserAgent)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		QuestionField:  v.GetString("question_field"),
		AnswerField:    v.GetString("answer_field"),
		ImageField:     v.GetString("image_field"),
		OutputDir:      v.GetString("output_dir"),
		ImagesDir:      v.GetString("images_dir"),
		SearchField:    v.GetString("search_field"),
		SearchDelay:    time.Duration(v.GetFloat64("delay_between_searches") * float64(time.Second)),
		MaxImageWidth:  v.GetInt("max_image_width"),
		MaxImageHeight: v.GetInt("max_image_height"),
		UserAgent:      v.GetString("user_agent"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MediaDir returns the directory that holds downloaded images.
func (c *Config) MediaDir() string {
	return filepath.Join(c.OutputDir, c.ImagesDir)
}

func (c *Config) validate() error {
	if c.QuestionField == "" || c.AnswerField == "" || c.ImageField == "" {
		return fmt.Errorf("question_field, answer_field and image_field must not be empty")
	}

	if c.SearchField != SearchFieldQuestion && c.SearchField != SearchFieldAnswer {
		return fmt.Errorf("search_field must be %q or %q, got %q",
			SearchFieldQuestion, SearchFieldAnswer, c.SearchField)
	}

	if c.SearchDelay < 0 {
		return fmt.Errorf("delay_between_searches must not be negative")
	}

	if c.MaxImageWidth <= 0 || c.MaxImageHeight <= 0 {
		return fmt.Errorf("max image dimensions must be positive")
	}

	return nil
}
