package spankit

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultReportTimeout = time.Second * 30
	DefaultRetryMax      = 3
)

// Options is the configuration surface consumed, not owned, by this library:
// the surrounding client decides the values. OptionsFromEnv is a convenience
// for reading them from the environment.
type Options struct {
	// Endpoint is the base URL transaction events are delivered to.
	Endpoint string `envconfig:"ENDPOINT"`

	// AccessToken authenticates deliveries against the collector endpoint.
	AccessToken string `envconfig:"ACCESS_TOKEN"`

	// MaxSpans caps how many spans a single transaction may track.
	MaxSpans int `envconfig:"MAX_SPANS" default:"1000"`

	// SampleRate is the externally decided sampling rate, carried here for the
	// surrounding client. The library never computes sampling decisions from
	// it.
	SampleRate float64 `envconfig:"SAMPLE_RATE" default:"1"`

	// ReportTimeout bounds a single delivery attempt.
	ReportTimeout time.Duration `envconfig:"REPORT_TIMEOUT" default:"30s"`

	// RetryMax is how many times a failed delivery is retried.
	RetryMax int `envconfig:"RETRY_MAX" default:"3"`
}

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	return Options{
		MaxSpans:      DefaultMaxSpans,
		SampleRate:    1,
		ReportTimeout: DefaultReportTimeout,
		RetryMax:      DefaultRetryMax,
	}
}

// OptionsFromEnv populates Options from SPANKIT_* environment variables,
// falling back to the defaults above.
func OptionsFromEnv() (Options, error) {
	var opts Options
	if err := envconfig.Process("spankit", &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
